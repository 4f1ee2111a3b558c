// Package segment splits extracted page text into titled paragraph units.
//
// The source documents are OneNote page exports: a title line, a creation
// date line containing an English weekday name, then bullet-point content.
// Title detection and paragraph splitting are heuristics tuned to that
// template; documents outside it degrade to a single untitled section with
// best-effort splitting.
package segment

import (
	"regexp"
	"strings"

	"pdfsearch/internal/pdfdoc"
)

// TextUnit is one paragraph-level searchable record.
type TextUnit struct {
	// DocumentID identifies the source document, stable across re-indexing.
	DocumentID string `json:"file_name"`
	// SectionIndex increments each time a new section title is detected.
	// Zero until the first title marker is seen.
	SectionIndex int `json:"section_index"`
	// SectionTitle is the most recent title seen before this unit.
	SectionTitle string `json:"title"`
	// PageNumber is the 1-based page within the source document.
	PageNumber int `json:"page_number"`
	// ParagraphIndex is the 1-based position within the page, counting
	// only non-empty units.
	ParagraphIndex int `json:"paragraph_index"`
	// Text is the raw unit content, never empty.
	Text string `json:"text"`
}

// SectionDetector locates a section title within one page's raw text.
// Implementations encode a document-template assumption; swapping the
// detector supports alternate templates without touching Segment.
type SectionDetector interface {
	// DetectTitle returns the section title found on the page, if any.
	// A title that is empty after trimming counts as not found.
	DetectTitle(pageText string) (title string, ok bool)
}

// weekdayPattern matches the creation-date line's weekday token.
var weekdayPattern = regexp.MustCompile(`(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday)`)

// paragraphPattern marks paragraph boundaries: a single word character
// followed by a period and an optional line break, the bullet-point
// convention of the source template.
var paragraphPattern = regexp.MustCompile(`\b\w\.\n?`)

// WeekdayDetector finds titles in OneNote-style exports: the title is the
// line immediately preceding the first weekday name in the page text.
type WeekdayDetector struct{}

// DetectTitle implements SectionDetector.
func (WeekdayDetector) DetectTitle(pageText string) (string, bool) {
	loc := weekdayPattern.FindStringIndex(pageText)
	if loc == nil {
		return "", false
	}

	end := loc[0]
	start := 0
	if end > 0 {
		start = strings.LastIndex(pageText[:end-1], "\n") + 1
	}

	title := strings.TrimSpace(pageText[start:end])
	if title == "" {
		return "", false
	}
	return title, true
}

// Segment converts extracted pages into ordered TextUnits.
//
// A detected title updates the carried SectionTitle and increments
// SectionIndex for all subsequent units until the next marker; pages
// without a marker inherit the previous title unchanged. ParagraphIndex
// restarts at 1 on each page, and whitespace-only fragments are dropped
// without consuming a slot.
func Segment(documentID string, pages []pdfdoc.Page, detector SectionDetector) []TextUnit {
	if detector == nil {
		detector = WeekdayDetector{}
	}

	var units []TextUnit
	currentTitle := ""
	sectionIndex := 0

	for _, page := range pages {
		if title, ok := detector.DetectTitle(page.Text); ok {
			currentTitle = title
			sectionIndex++
		}

		paragraphIndex := 0
		for _, text := range splitParagraphs(page.Text) {
			paragraphIndex++
			units = append(units, TextUnit{
				DocumentID:     documentID,
				SectionIndex:   sectionIndex,
				SectionTitle:   currentTitle,
				PageNumber:     page.Number,
				ParagraphIndex: paragraphIndex,
				Text:           text,
			})
		}
	}

	return units
}

// splitParagraphs splits page text at bullet boundaries, discarding
// whitespace-only fragments.
func splitParagraphs(text string) []string {
	parts := paragraphPattern.Split(text, -1)
	paragraphs := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		paragraphs = append(paragraphs, part)
	}
	return paragraphs
}
