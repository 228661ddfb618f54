package model

import "fmt"

// UnsupportedFormatError reports a model URI whose extension has no loader.
type UnsupportedFormatError struct {
	URI string
	Ext string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("model: unsupported format .%s: %s", e.Ext, e.URI)
}

// DecodeError reports fetched bytes that do not parse as the claimed format.
type DecodeError struct {
	URI    string
	Format Format
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("model: decode %s %s: %v", e.Format, e.URI, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
