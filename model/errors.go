package model

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step a warning was raised in
type Stage string

const (
	StageExtract  Stage = "extract"
	StageClassify Stage = "classify"
	StageFallback Stage = "fallback"
)

// ErrPageNotFound is returned when a page number is outside the document
var ErrPageNotFound = errors.New("page not found")

// ExtractionError reports that primary extraction failed for a page
type ExtractionError struct {
	Page int
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("page %d: extraction failed: %v", e.Page, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ClassificationError reports that the quality scorer failed for a page
type ClassificationError struct {
	Page int
	Err  error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("page %d: quality scoring failed: %v", e.Page, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// FallbackError reports that the fallback extractor failed for a page
type FallbackError struct {
	Page int
	Err  error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("page %d: fallback extraction failed: %v", e.Page, e.Err)
}

func (e *FallbackError) Unwrap() error { return e.Err }

// Warning is a non-fatal issue recorded while processing a document.
// Processing continues after a warning; the affected page keeps its
// previous state.
type Warning struct {
	Page    int
	Stage   Stage
	Message string
	Err     error
}

// NewWarning builds a warning from a page-level error
func NewWarning(page int, stage Stage, err error) Warning {
	return Warning{Page: page, Stage: stage, Message: err.Error(), Err: err}
}

func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("[%s] page %d: %s", w.Stage, w.Page, w.Message)
	}
	return fmt.Sprintf("[%s] %s", w.Stage, w.Message)
}
