// Package parsererror defines the typed errors raised while turning an
// uploaded statement into records.
package parsererror

import "fmt"

// InvalidFileError reports a file whose extension or declared content type is not CSV.
type InvalidFileError struct {
	FileName    string
	ContentType string
}

func (e *InvalidFileError) Error() string {
	if e.ContentType != "" {
		return fmt.Sprintf("invalid file '%s': expected a CSV file, got content type '%s'", e.FileName, e.ContentType)
	}
	return fmt.Sprintf("invalid file '%s': expected a CSV file", e.FileName)
}

// EmptyInputError reports CSV input without a header and at least one data row.
type EmptyInputError struct {
	FileName string
	Lines    int
}

func (e *EmptyInputError) Error() string {
	name := e.FileName
	if name == "" {
		name = "input"
	}
	return fmt.Sprintf("%s has no data rows (found %d non-empty lines, need a header and at least one row)", name, e.Lines)
}

// MalformedRowError reports a row whose field count does not match the header.
// It is recovered locally: the row is skipped and the error only logged.
type MalformedRowError struct {
	Line     int
	Expected int
	Actual   int
	Err      error
}

func (e *MalformedRowError) Error() string {
	msg := fmt.Sprintf("malformed row at line %d: expected %d fields, got %d", e.Line, e.Expected, e.Actual)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

// NoValidRecordsError reports that sanitization dropped every parsed row.
type NoValidRecordsError struct {
	FileName string
	Parsed   int
}

func (e *NoValidRecordsError) Error() string {
	return fmt.Sprintf("no valid records in '%s': all %d parsed rows lack Type, Product or Started Date", e.FileName, e.Parsed)
}
