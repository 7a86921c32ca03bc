package csvmend

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unsafe"
)

const defaultBufferSize = 1 << 12 // 4096 bytes

var (
	// ErrDamagedQuote is returned alongside a record that contained a quote where quoting rules do not allow one.
	ErrDamagedQuote = errors.New("csvmend: damaged quote")
)

// ParseError contains location information for a repaired record.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("csvmend: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Reader reads repaired records from a stream, joining quoted fields that span
// physical lines.
type Reader struct {
	src io.Reader

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Header treats the first record as the header row. Default is true.
	Header bool
	// Reconcile pads or merges each record to the header's field count.
	Reconcile bool

	line     *Line
	buf      []byte
	pos      int
	eof      bool
	inRecord bool
	skipLF   bool

	lineNo     int
	recordLine int
	last       Reconciliation
}

// NewReader creates a Reader that consumes CSV data from r, panicking if r is nil.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("csvmend: reader source cannot be nil")
	}

	return &Reader{
		src:    r,
		Comma:  ',',
		Header: true,
		buf:    make([]byte, 0, defaultBufferSize),
	}
}

// Read returns the next record, the header row included. A record with a
// damaged quote is returned together with a *ParseError wrapping
// ErrDamagedQuote; the record is still usable. io.EOF signals that no more
// records remain. Empty lines are skipped.
func (r *Reader) Read() (record []string, err error) {
	if r == nil || r.src == nil {
		return nil, io.EOF
	}
	if r.line == nil {
		comma := r.Comma
		if comma == 0 {
			comma = ','
		}
		r.line = NewLine(comma, r.Header)
	}

	for {
		text := r.text()
		if r.skipLF && r.pos < len(text) {
			if text[r.pos] == '\n' {
				r.pos++
			}
			r.skipLF = false
			continue
		}

		if r.pos < len(text) && (r.inRecord || !r.danglingCR(text)) {
			if !r.inRecord {
				if n, ok := blankLine(text[r.pos:]); ok {
					r.pos += n
					r.lineNo++
					continue
				}
			}

			next := r.line.scan(text, r.pos)
			if next != Incomplete {
				r.inRecord = false
				r.skipLF = !r.eof && next == len(text) && text[next-1] == '\r'
				return r.finish(text, next, r.line.settle(next, false))
			}
			r.inRecord = true
			if r.eof {
				r.inRecord = false
				return r.finish(text, len(text), r.line.settle(Incomplete, true))
			}
		} else if r.eof {
			return nil, io.EOF
		}

		if err := r.fill(); err != nil {
			return nil, err
		}
	}
}

// ReadAll reads the remaining records. Damaged records are kept; the first
// other error stops reading.
func (r *Reader) ReadAll() (records [][]string, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil && !errors.Is(err, ErrDamagedQuote) {
			return nil, err
		}
		records = append(records, record)
	}
}

// Line returns the underlying Line, or nil before the first Read.
func (r *Reader) Line() *Line {
	return r.line
}

// Headers returns the header names once the header row has been read.
func (r *Reader) Headers() []string {
	if r.line == nil {
		return nil
	}
	return r.line.Headers()
}

// LineNumber returns the physical line on which the last record started.
func (r *Reader) LineNumber() int {
	return r.recordLine
}

// LastReconciliation returns how the last record was adjusted when Reconcile is set.
func (r *Reader) LastReconciliation() Reconciliation {
	return r.last
}

// finish consumes text[r.pos:end] as the record just settled and builds the
// result.
func (r *Reader) finish(text string, end int, ok bool) ([]string, error) {
	consumed := text[r.pos:end]
	r.recordLine = r.lineNo + 1

	var err error
	if !ok {
		prefix := text[r.pos:r.line.DamageOffset()]
		err = &ParseError{
			Line:   r.recordLine + countLines(prefix),
			Column: len(prefix) - strings.LastIndexAny(prefix, "\r\n"),
			Err:    ErrDamagedQuote,
		}
	}

	r.lineNo += countLines(consumed)
	r.pos = end

	r.last = Reconciliation{From: r.line.Len(), To: r.line.Len()}
	if r.Reconcile {
		r.last = r.line.Reconcile()
	}
	return r.line.Fields(), err
}

// text views the buffered input without copying. The view is only valid until
// the next fill.
func (r *Reader) text() string {
	if len(r.buf) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(r.buf), len(r.buf))
}

// blankLine reports whether s starts with a bare terminator and its length.
func blankLine(s string) (int, bool) {
	switch s[0] {
	case '\n':
		return 1, true
	case '\r':
		if len(s) > 1 && s[1] == '\n' {
			return 2, true
		}
		return 1, true
	}
	return 0, false
}

// danglingCR reports whether the unconsumed text is a lone CR that may be the
// first half of a CRLF split across reads.
func (r *Reader) danglingCR(text string) bool {
	return !r.eof && r.pos == len(text)-1 && text[r.pos] == '\r'
}

// fill reads more input after the unconsumed text. Consumed bytes are dropped
// first, so a record being scanned always starts at the front of the buffer.
func (r *Reader) fill() error {
	if r.pos > 0 {
		n := copy(r.buf, r.buf[r.pos:])
		r.buf = r.buf[:n]
		r.pos = 0
	}
	if cap(r.buf)-len(r.buf) < defaultBufferSize/2 {
		r.buf = slices.Grow(r.buf, defaultBufferSize)
	}

	n, err := r.src.Read(r.buf[len(r.buf):cap(r.buf)])
	r.buf = r.buf[:len(r.buf)+n]
	if err == io.EOF {
		r.eof = true
		return nil
	}
	return err
}

// countLines counts line terminators in s, treating CRLF as one.
func countLines(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\n':
			n++
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			n++
		}
	}
	return n
}
