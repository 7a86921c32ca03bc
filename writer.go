package csvmend

import (
	"bufio"
	"errors"
	"io"
)

var (
	errNilWriter      = errors.New("csvmend: writer is nil")
	errWriterNoTarget = errors.New("csvmend: writer destination cannot be nil")
)

// Writer emits canonical CSV records with minimal quoting.
type Writer struct {
	dst *bufio.Writer

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// UseCRLF writes records terminated with \r\n when set.
	UseCRLF bool
	// AlwaysQuote forces quoting for all fields when enabled.
	AlwaysQuote bool

	scratch []byte
	err     error
}

// NewWriter creates a new Writer with internal buffering tuned for bulk writes.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{
		dst:   bufio.NewWriterSize(w, defaultBufferSize),
		Comma: ',',
	}
}

// Reset updates the underlying writer while preserving the configuration flags.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.err = nil
}

// Write emits a single record. Values containing the delimiter, a quote, CR,
// LF or TAB are quoted, as is a record made of one empty field.
func (w *Writer) Write(record []string) error {
	if err := w.ready(); err != nil {
		return err
	}
	comma := w.comma()

	buf := w.scratch[:0]
	for i := range record {
		if i > 0 {
			buf = append(buf, comma)
		}
		quoted := w.AlwaysQuote || fieldNeedsQuote(record[i], comma) || loneEmpty(len(record), record[i])
		buf = appendField(buf, record[i], quoted)
	}
	return w.emit(buf)
}

// WriteLine emits the current record of l using the writer's delimiter.
func (w *Writer) WriteLine(l *Line) error {
	if err := w.ready(); err != nil {
		return err
	}
	comma := w.comma()

	buf := w.scratch[:0]
	for i := range l.fields {
		if i > 0 {
			buf = append(buf, comma)
		}
		f := &l.fields[i]
		quoted := w.AlwaysQuote || f.NeedsQuote || (comma != l.comma && fieldNeedsQuote(f.Value, comma)) ||
			loneEmpty(len(l.fields), f.Value)
		buf = appendField(buf, f.Value, quoted)
	}
	return w.emit(buf)
}

// WriteAll writes multiple records, stopping at the first error.
func (w *Writer) WriteAll(records [][]string) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if err := w.ready(); err != nil {
		return err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

func (w *Writer) ready() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	return w.err
}

func (w *Writer) comma() byte {
	if w.Comma == 0 {
		return ','
	}
	return w.Comma
}

// emit writes buf followed by the configured newline and keeps buf for reuse.
func (w *Writer) emit(buf []byte) error {
	if w.UseCRLF {
		buf = append(buf, '\r', '\n')
	} else {
		buf = append(buf, '\n')
	}
	w.scratch = buf
	if _, err := w.dst.Write(buf); err != nil {
		w.err = err
		return err
	}
	return nil
}
