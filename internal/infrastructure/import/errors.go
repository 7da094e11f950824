package csvimport

import (
	"errors"
	"fmt"
)

// Row error codes
const (
	ErrCodeImportMalformedRow      = "ERR_IMPORT_MALFORMED_ROW"
	ErrCodeImportRequiredField     = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidFormat     = "ERR_IMPORT_INVALID_FORMAT"
	ErrCodeImportDuplicateInFile   = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeImportReferenceNotFound = "ERR_IMPORT_REFERENCE_NOT_FOUND"
	ErrCodeImportRejected          = "ERR_IMPORT_REJECTED"
)

// File level errors
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("CSV file is not valid UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrTooManyRows     = errors.New("CSV file has too many rows")
)

// RowError describes why one row was not imported
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// ErrorCollection keeps the first maxErrors row errors and counts the rest
type ErrorCollection struct {
	errors    []RowError
	maxErrors int
	total     int
	rows      map[int]struct{}
}

// NewErrorCollection creates an ErrorCollection; maxErrors <= 0 means 100
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors, rows: make(map[int]struct{})}
}

// Add records err
func (c *ErrorCollection) Add(err RowError) {
	c.total++
	c.rows[err.Row] = struct{}{}
	if len(c.errors) < c.maxErrors {
		c.errors = append(c.errors, err)
	}
}

// AddRequired records a missing value
func (c *ErrorCollection) AddRequired(row int, column string) {
	c.Add(NewRowError(row, column, ErrCodeImportRequiredField, fmt.Sprintf("field '%s' is required", column)))
}

// AddFormat records a value that could not be parsed
func (c *ErrorCollection) AddFormat(row int, column, expected, value string) {
	err := NewRowError(row, column, ErrCodeImportInvalidFormat, "expected "+expected)
	err.Value = value
	c.Add(err)
}

// HasErrors reports whether any error was recorded
func (c *ErrorCollection) HasErrors() bool {
	return c.total > 0
}

// HasRow reports whether row has at least one error
func (c *ErrorCollection) HasRow(row int) bool {
	_, ok := c.rows[row]
	return ok
}

// Errors returns the retained errors
func (c *ErrorCollection) Errors() []RowError {
	return c.errors
}

// Total returns the number of errors recorded, including dropped ones
func (c *ErrorCollection) Total() int {
	return c.total
}

// Truncated reports whether errors were dropped
func (c *ErrorCollection) Truncated() bool {
	return c.total > len(c.errors)
}

// ErrorRows returns the number of distinct rows with errors
func (c *ErrorCollection) ErrorRows() int {
	return len(c.rows)
}
