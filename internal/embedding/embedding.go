// Package embedding provides vector embedding generation for text units.
package embedding

import "fmt"

// EmbedText builds the text submitted to the encoder for one unit:
// section title and body joined the same way at ingestion and query time
// so vectors stay comparable.
func EmbedText(title, body string) string {
	return title + " \n " + body
}

// EncodingError indicates the external encoder failed or returned a batch
// that does not match the request. Fatal to the current operation; never
// retried automatically.
type EncodingError struct {
	BatchSize int
	Err       error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding batch of %d: %v", e.BatchSize, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
