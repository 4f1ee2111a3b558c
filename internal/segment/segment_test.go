package segment

import (
	"testing"

	"pdfsearch/internal/pdfdoc"
)

func TestWeekdayDetector(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantTitle string
		wantOK    bool
	}{
		{
			name:      "title above weekday line",
			text:      "Project Plan\nMonday, January 1, 2024\ncontent",
			wantTitle: "Project Plan",
			wantOK:    true,
		},
		{
			name:      "no weekday",
			text:      "Some Notes\nJanuary 1, 2024\ncontent",
			wantTitle: "",
			wantOK:    false,
		},
		{
			name:      "empty text",
			text:      "",
			wantTitle: "",
			wantOK:    false,
		},
		{
			name:      "weekday at start of text",
			text:      "Tuesday, March 5, 2024\ncontent",
			wantTitle: "",
			wantOK:    false,
		},
		{
			name:      "title with surrounding whitespace",
			text:      "  Weekly Review  \nFriday, June 7, 2024",
			wantTitle: "Weekly Review",
			wantOK:    true,
		},
		{
			name:      "later weekday uses first match",
			text:      "First\nSaturday notes\nSecond\nSunday notes",
			wantTitle: "First",
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, ok := WeekdayDetector{}.DetectTitle(tt.text)
			if ok != tt.wantOK || title != tt.wantTitle {
				t.Errorf("DetectTitle(%q) = (%q, %v), want (%q, %v)",
					tt.text, title, ok, tt.wantTitle, tt.wantOK)
			}
		})
	}
}

func TestSegment_TwoPageScenario(t *testing.T) {
	// Page 1 has no title marker; page 2 carries a title above the date
	// line followed by three bullet paragraphs.
	pages := []pdfdoc.Page{
		{Number: 1, Text: "intro text without markers"},
		{Number: 2, Text: "Project Plan\nMonday, January 1, 2024\nfirst item a.\nsecond item b.\nthird item c.\n"},
	}

	units := Segment("notes.pdf", pages, nil)

	var page1, page2 []TextUnit
	for _, u := range units {
		switch u.PageNumber {
		case 1:
			page1 = append(page1, u)
		case 2:
			page2 = append(page2, u)
		default:
			t.Fatalf("unexpected page number %d", u.PageNumber)
		}
	}

	if len(page1) == 0 {
		t.Fatal("expected units on page 1")
	}
	for _, u := range page1 {
		if u.SectionTitle != "" || u.SectionIndex != 0 {
			t.Errorf("page 1 unit: got title %q index %d, want untitled section 0", u.SectionTitle, u.SectionIndex)
		}
	}

	if len(page2) != 3 {
		t.Fatalf("page 2 units = %d, want 3", len(page2))
	}
	for i, u := range page2 {
		if u.SectionTitle != "Project Plan" {
			t.Errorf("page 2 unit %d: title = %q, want %q", i, u.SectionTitle, "Project Plan")
		}
		if u.SectionIndex != 1 {
			t.Errorf("page 2 unit %d: section index = %d, want 1", i, u.SectionIndex)
		}
		if u.ParagraphIndex != i+1 {
			t.Errorf("page 2 unit %d: paragraph index = %d, want %d", i, u.ParagraphIndex, i+1)
		}
	}
}

func TestSegment_NoMarkers(t *testing.T) {
	pages := []pdfdoc.Page{
		{Number: 1, Text: "plain text one"},
		{Number: 2, Text: "plain text two"},
	}

	units := Segment("doc.pdf", pages, nil)
	if len(units) == 0 {
		t.Fatal("expected units")
	}
	for _, u := range units {
		if u.SectionTitle != "" {
			t.Errorf("title = %q, want empty", u.SectionTitle)
		}
		if u.SectionIndex != 0 {
			t.Errorf("section index = %d, want 0", u.SectionIndex)
		}
	}
}

func TestSegment_SectionIndexMonotonic(t *testing.T) {
	pages := []pdfdoc.Page{
		{Number: 1, Text: "Alpha\nMonday, January 1, 2024\ncontent"},
		{Number: 2, Text: "carried over content"},
		{Number: 3, Text: "Beta\nWednesday, March 6, 2024\nmore content"},
	}

	units := Segment("doc.pdf", pages, nil)

	prev := 0
	for _, u := range units {
		if u.SectionIndex < prev {
			t.Fatalf("section index decreased: %d after %d", u.SectionIndex, prev)
		}
		prev = u.SectionIndex
	}

	byPage := make(map[int]int)
	for _, u := range units {
		byPage[u.PageNumber] = u.SectionIndex
	}
	if byPage[1] != 1 || byPage[2] != 1 || byPage[3] != 2 {
		t.Errorf("section indexes by page = %v, want pages 1-2 in section 1 and page 3 in section 2", byPage)
	}

	titles := make(map[int]string)
	for _, u := range units {
		titles[u.PageNumber] = u.SectionTitle
	}
	if titles[2] != "Alpha" {
		t.Errorf("page 2 inherited title = %q, want %q", titles[2], "Alpha")
	}
	if titles[3] != "Beta" {
		t.Errorf("page 3 title = %q, want %q", titles[3], "Beta")
	}
}

func TestSegment_DropsEmptyUnits(t *testing.T) {
	// Adjacent bullet boundaries leave whitespace-only fragments that
	// must not consume paragraph slots.
	pages := []pdfdoc.Page{
		{Number: 1, Text: "first a.\n \nsecond b.\n"},
	}

	units := Segment("doc.pdf", pages, nil)
	for _, u := range units {
		if u.Text == "" {
			t.Error("empty unit survived")
		}
	}
	for i, u := range units {
		if u.ParagraphIndex != i+1 {
			t.Errorf("paragraph index = %d, want %d (no gaps)", u.ParagraphIndex, i+1)
		}
	}
}

func TestSegment_ParagraphIndexRestartsPerPage(t *testing.T) {
	pages := []pdfdoc.Page{
		{Number: 1, Text: "one a.\ntwo b.\n"},
		{Number: 2, Text: "three c.\n"},
	}

	units := Segment("doc.pdf", pages, nil)

	firstOnPage := make(map[int]int)
	for _, u := range units {
		if _, ok := firstOnPage[u.PageNumber]; !ok {
			firstOnPage[u.PageNumber] = u.ParagraphIndex
		}
	}
	for page, idx := range firstOnPage {
		if idx != 1 {
			t.Errorf("page %d first paragraph index = %d, want 1", page, idx)
		}
	}
}

func TestSegment_EmptyPages(t *testing.T) {
	units := Segment("doc.pdf", []pdfdoc.Page{{Number: 1}, {Number: 2}}, nil)
	if len(units) != 0 {
		t.Errorf("units = %d, want 0 for empty pages", len(units))
	}
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "three bullets", text: "alpha a.\nbeta b.\ngamma c.\n", want: 3},
		{name: "no boundary", text: "one long paragraph without bullets", want: 1},
		{name: "whitespace only", text: "   \n  ", want: 0},
		{name: "empty", text: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitParagraphs(tt.text)
			if len(got) != tt.want {
				t.Errorf("splitParagraphs(%q) = %d parts %q, want %d", tt.text, len(got), got, tt.want)
			}
		})
	}
}
