package ingest

import (
	"fmt"
	"strings"
)

// DecodingError indicates the source bytes could not be decoded with any
// configured encoding. Fatal for the job: no partial result is produced.
type DecodingError struct {
	Encodings []string
}

// Error implements the error interface.
func (e *DecodingError) Error() string {
	return fmt.Sprintf("source not decodable with any configured encoding: %s", strings.Join(e.Encodings, ", "))
}

// EmptyFileError indicates no header row was found in the source.
// Fatal for the job.
type EmptyFileError struct{}

// Error implements the error interface.
func (e *EmptyFileError) Error() string {
	return "no header row found in source"
}

// IsFatal reports whether err aborts the whole job rather than a single row.
func IsFatal(err error) bool {
	switch err.(type) {
	case *DecodingError, *EmptyFileError:
		return true
	default:
		return false
	}
}
