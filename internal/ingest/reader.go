// Package ingest parses Azure Advisor CSV exports into raw row records.
//
// The reader tolerates the encoding and quoting variance seen in real
// exports: UTF-8 with or without a BOM, Latin-1 fallback, delimiters and
// doubled quotes inside quoted fields. Individual lines that cannot be
// aligned to the header are skipped and counted; they never abort the job.
package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/cloudlens/advisor/pkg/logger"
)

// Encoding names accepted by WithEncodings.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// RawRow is one tokenized data line, positionally aligned to the header.
// Rows are consumed immediately by the mapper and not retained.
type RawRow struct {
	// Line is the 1-based line number in the source file, header included.
	Line int
	// Fields holds the cell values in header order.
	Fields []string
}

// Option configures a Reader.
type Option func(*Reader)

// WithEncodings overrides the decode attempt order. The default is UTF-8
// with a Latin-1 fallback.
func WithEncodings(encodings ...string) Option {
	return func(r *Reader) {
		r.encodings = encodings
	}
}

// Reader produces a lazy, finite sequence of RawRow records from one source.
// A Reader is not restartable; re-ingestion requires re-opening the source.
type Reader struct {
	logger         logger.Logger
	cr             *csv.Reader
	header         []string
	encodings      []string
	encoding       string
	line           int
	malformedLines int
}

// NewReader decodes and tokenizes the source, consuming it through the
// header row. It fails with *DecodingError when no configured encoding
// succeeds and with *EmptyFileError when no header row is found.
func NewReader(src io.Reader, opts ...Option) (*Reader, error) {
	return NewReaderWithLogger(src, logger.GetGlobalLogger(), opts...)
}

// NewReaderWithLogger creates a Reader with a custom logger.
func NewReaderWithLogger(src io.Reader, log logger.Logger, opts ...Option) (*Reader, error) {
	r := &Reader{
		logger:    log,
		encodings: []string{EncodingUTF8, EncodingLatin1},
	}
	for _, opt := range opts {
		opt(r)
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}

	text, encoding, err := decode(raw, r.encodings)
	if err != nil {
		return nil, err
	}
	r.encoding = encoding

	cr := csv.NewReader(strings.NewReader(text))
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	r.cr = cr

	if err := r.readHeader(); err != nil {
		return nil, err
	}

	r.logger.Debug("Opened Advisor export",
		"encoding", encoding,
		"columns", len(r.header))

	return r, nil
}

// Header returns the column names from the first non-empty line.
func (r *Reader) Header() []string {
	return r.header
}

// Encoding returns the encoding that successfully decoded the source.
func (r *Reader) Encoding() string {
	return r.encoding
}

// MalformedLines returns the count of lines skipped because they could not
// be aligned to the header's column count.
func (r *Reader) MalformedLines() int {
	return r.malformedLines
}

// Next returns the next data row in file order. It returns io.EOF when the
// source is exhausted and ctx.Err() when the job is cancelled. Misaligned
// lines are skipped and counted, never returned as errors.
func (r *Reader) Next(ctx context.Context) (RawRow, error) {
	for {
		if err := ctx.Err(); err != nil {
			return RawRow{}, err
		}

		record, err := r.cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return RawRow{}, io.EOF
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				r.malformedLines++
				r.logger.Warn("Skipping unparseable line", "line", parseErr.Line, "error", err)
				continue
			}
			return RawRow{}, fmt.Errorf("reading row: %w", err)
		}
		r.line, _ = r.cr.FieldPos(0)

		if isEmptyRecord(record) {
			continue
		}

		if len(record) != len(r.header) {
			r.malformedLines++
			r.logger.Warn("Skipping misaligned line",
				"line", r.line,
				"fields", len(record),
				"expected", len(r.header))
			continue
		}

		return RawRow{Line: r.line, Fields: record}, nil
	}
}

// readHeader consumes lines until the first non-empty record.
func (r *Reader) readHeader() error {
	for {
		record, err := r.cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return &EmptyFileError{}
			}
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return fmt.Errorf("reading header: %w", err)
		}
		if isEmptyRecord(record) {
			continue
		}
		r.line, _ = r.cr.FieldPos(0)

		header := make([]string, len(record))
		for i, name := range record {
			header[i] = strings.TrimSpace(name)
		}
		r.header = header
		return nil
	}
}

// decode attempts each configured encoding in order and returns the first
// successful decode as a string, with the BOM stripped.
func decode(raw []byte, encodings []string) (string, string, error) {
	for _, name := range encodings {
		switch strings.ToLower(name) {
		case EncodingUTF8, "utf8":
			data := bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
			if utf8.Valid(data) {
				return string(data), EncodingUTF8, nil
			}
		case EncodingLatin1, "iso-8859-1", "iso8859-1":
			decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
			if err == nil {
				return string(decoded), EncodingLatin1, nil
			}
		default:
			return "", "", fmt.Errorf("unsupported encoding: %s", name)
		}
	}
	return "", "", &DecodingError{Encodings: encodings}
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
