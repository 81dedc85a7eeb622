package invoices

import (
	"fmt"
)

// InvalidUploadError rejects an upload before any row is read.
type InvalidUploadError struct {
	Reason string
}

func (e *InvalidUploadError) Error() string {
	return e.Reason
}

// MalformedInputError means the file as a whole could not be parsed.
type MalformedInputError struct {
	Line int // 0 when not tied to a line
	Msg  string
	Err  error
}

func (e *MalformedInputError) Error() string {
	msg := e.Msg
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("malformed csv: %s: %v", msg, e.Err)
	}
	return "malformed csv: " + msg
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// FieldParseError names the column whose value could not be converted.
type FieldParseError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FieldParseError) Unwrap() error {
	return e.Err
}
