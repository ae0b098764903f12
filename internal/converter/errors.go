package converter

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySheet indicates the selected sheet has no non-empty rows.
	ErrEmptySheet = errors.New("sheet has no data")

	// ErrNoYearMarker indicates no cell reached the configured start year.
	ErrNoYearMarker = errors.New("no year marker row found")

	// ErrHeaderMismatch indicates the reconstructed header does not fit the sheet width.
	ErrHeaderMismatch = errors.New("header does not match sheet width")

	// ErrSheetNotFound indicates the configured sheet is absent from the workbook.
	ErrSheetNotFound = errors.New("sheet not found")
)

// ConversionError records which file and pipeline stage failed.
type ConversionError struct {
	File  string
	Stage string // "read", "detect", "header", "write"
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("converting %s (%s): %v", e.File, e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func stageError(file, stage string, err error) *ConversionError {
	return &ConversionError{File: file, Stage: stage, Err: err}
}
