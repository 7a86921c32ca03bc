package csvmend

import "unicode/utf8"

// Incomplete is returned by ParseFrom when the buffer ended before a record
// terminator was consumed.
const Incomplete = -1

const quote = '"'

// state is the position of the tokenizer relative to quoting.
type state uint8

const (
	atBoundary      state = iota // start of a field or record
	inUnquoted                   // inside plain text
	quoteInUnquoted              // quote run inside plain text
	inQuoted                     // inside quoted text
	quoteInQuoted                // quote run inside quoted text
	atLineEnd                    // terminator consumed
)

// class groups input bytes by their meaning for the tokenizer.
type class uint8

const (
	classText class = iota
	classQuote
	classComma
	classEOL
	classSkip
)

// Line parses and repairs one record at a time.
//
// A Line keeps the first complete record as its header when header mode is on
// and exposes the current record through Fields, Value and Text. It is not safe
// for concurrent use.
type Line struct {
	comma     byte
	hasHeader bool

	fields []Field
	header []Field

	inQuotes     bool
	damageOffset int

	values []string
	names  []string
	index  map[string]int

	pending cursor
}

// NewLine returns a Line splitting on comma. When header is true the first
// complete record becomes the header record.
//
// NewLine panics if comma is the quote character, a line terminator or not a
// single-byte character.
func NewLine(comma byte, header bool) *Line {
	if comma == quote || comma == '\r' || comma == '\n' || comma >= utf8.RuneSelf {
		panic("csvmend: invalid delimiter")
	}
	l := &Line{comma: comma, hasHeader: header, damageOffset: -1}
	l.reset()
	return l
}

// DefaultLine returns a comma separated Line with header mode enabled.
func DefaultLine() *Line {
	return NewLine(',', true)
}

// Parse parses buf as one record whose end is the end of input. A quoted field
// left open at the end of buf is treated as damaged. It reports false when any
// field contained a damaged quote.
func (l *Line) Parse(buf string) bool {
	_, ok := l.parse(buf, 0, true)
	return ok
}

// ParseFrom parses the record starting at buf[start]. It returns the index just
// past the consumed terminator, or Incomplete when buf ran out first; in that
// case the caller may append more input and parse again from the same start.
// ok is false when any field contained a damaged quote.
func (l *Line) ParseFrom(buf string, start int) (next int, ok bool) {
	return l.parse(buf, start, false)
}

// InQuotes reports whether the last parse ran out of input inside a quoted
// field.
func (l *Line) InQuotes() bool {
	return l.inQuotes
}

// DamageOffset returns the offset in the last parsed buffer of the first
// damaged quote, or -1 when the record was clean.
func (l *Line) DamageOffset() int {
	return l.damageOffset
}

// Comma returns the field delimiter.
func (l *Line) Comma() byte {
	return l.comma
}

func (l *Line) parse(buf string, start int, final bool) (int, bool) {
	if start > len(buf) {
		start = len(buf)
	}
	l.reset()
	next := l.scan(buf, start)
	return next, l.settle(next, final)
}

// reset discards any partially scanned record.
func (l *Line) reset() {
	l.pending = cursor{comma: l.comma, damageAt: -1}
}

// scan tokenizes the pending record, which begins at buf[start], from where
// the previous scan stopped. buf[start:] must extend the text seen by earlier
// scans of the same record. It returns the index just past the terminator, or
// Incomplete.
func (l *Line) scan(buf string, start int) int {
	c := &l.pending
	c.start = start
	for i := start + c.scanned; i < len(buf); i++ {
		b := buf[i]
		cls := l.classify(b)
		if cls == classSkip {
			continue
		}
		c.step(b, cls, i-start)
		if c.state == atLineEnd {
			if b == '\r' && i+1 < len(buf) && buf[i+1] == '\n' {
				i++
			}
			c.scanned = i + 1 - start
			return i + 1
		}
	}
	c.scanned = len(buf) - start
	return Incomplete
}

// settle closes the pending record and makes it the current one. final marks
// the end of input, so an open quoted field is damaged. It reports whether the
// record was clean.
func (l *Line) settle(next int, final bool) bool {
	c := &l.pending
	open := c.unwind()
	if open && final {
		c.damage(c.openedAt)
		open = false
	}
	if c.state != atLineEnd {
		c.finalize()
	}

	l.fields = c.record
	l.values = nil
	l.inQuotes = open
	l.damageOffset = -1
	if c.damaged {
		l.damageOffset = c.start + c.damageAt
	}

	if l.hasHeader && l.header == nil && (next != Incomplete || final) {
		l.setHeader(c.record)
	}
	ok := !c.damaged
	l.reset()
	return ok
}

func (l *Line) classify(b byte) class {
	switch {
	case b == quote:
		return classQuote
	case b == l.comma:
		return classComma
	case b == '\r' || b == '\n':
		return classEOL
	case b < 0x20 && b != '\t':
		return classSkip
	}
	return classText
}

func (l *Line) setHeader(record []Field) {
	l.header = append([]Field(nil), record...)
	l.names = nil
	l.index = nil
}

// pendingField is the field currently being assembled.
type pendingField struct {
	buf     []byte
	damaged bool
}

// cursor is the tokenizer state of one record. Offsets are relative to the
// start of the record.
type cursor struct {
	comma     byte
	state     state
	quotes    int
	field     pendingField
	record    []Field
	damaged   bool
	damageAt  int
	openedAt  int
	lastQuote int

	start   int
	scanned int
}

func (c *cursor) step(b byte, cls class, at int) {
	if cls == classQuote {
		c.lastQuote = at
	}
	switch c.state {
	case atBoundary:
		switch cls {
		case classQuote:
			c.openedAt = at
			c.state = inQuoted
		case classComma:
			c.finalize()
		case classEOL:
			c.finalize()
			c.state = atLineEnd
		case classText:
			c.store(b)
			c.state = inUnquoted
		}
	case inUnquoted:
		switch cls {
		case classQuote:
			c.damage(at)
			c.quotes = 1
			c.state = quoteInUnquoted
		case classComma:
			c.finalize()
		case classEOL:
			c.finalize()
			c.state = atLineEnd
		case classText:
			c.store(b)
		}
	case quoteInUnquoted:
		switch cls {
		case classQuote:
			c.quotes++
		case classComma:
			c.flushBare()
			c.finalize()
		case classEOL:
			c.flushBare()
			c.finalize()
			c.state = atLineEnd
		case classText:
			c.flushBare()
			c.store(b)
			c.state = inUnquoted
		}
	case inQuoted:
		switch cls {
		case classQuote:
			c.quotes = 1
			c.state = quoteInQuoted
		case classComma:
			if c.field.damaged {
				c.finalize()
			} else {
				c.store(b)
			}
		case classEOL:
			if c.field.damaged {
				c.finalize()
				c.state = atLineEnd
			} else {
				c.store(b)
			}
		case classText:
			c.store(b)
		}
	case quoteInQuoted:
		switch cls {
		case classQuote:
			c.quotes++
		case classComma, classEOL:
			if c.closeQuoted() {
				c.finalize()
				if cls == classEOL {
					c.state = atLineEnd
				}
			} else {
				c.store(b)
				c.state = inQuoted
			}
		case classText:
			if c.flushPairs() {
				c.store(quote)
				c.damage(c.lastQuote)
			}
			c.store(b)
			c.state = inQuoted
		}
	case atLineEnd:
	}
}

// unwind settles a quote run left pending at the end of input. It reports
// whether a quoted field is still open.
func (c *cursor) unwind() bool {
	switch c.state {
	case atBoundary, inUnquoted, atLineEnd:
		return false
	case quoteInUnquoted:
		c.flushBare()
		return false
	case inQuoted:
		return true
	case quoteInQuoted:
		if c.closeQuoted() {
			return false
		}
		c.state = inQuoted
		return true
	}
	return false
}

// flushPairs stores one quote per escaped pair in the pending run and reports
// whether an odd quote is left over.
func (c *cursor) flushPairs() bool {
	for n := c.quotes / 2; n > 0; n-- {
		c.store(quote)
	}
	odd := c.quotes%2 == 1
	c.quotes = 0
	return odd
}

// flushBare settles a quote run inside plain text. The field is already
// marked damaged.
func (c *cursor) flushBare() {
	if c.flushPairs() {
		c.store(quote)
	}
}

// closeQuoted settles a quote run followed by a delimiter or terminator and
// reports whether the field ends there.
func (c *cursor) closeQuoted() bool {
	if c.flushPairs() {
		if c.field.damaged {
			c.store(quote)
		}
		return true
	}
	return c.field.damaged
}

func (c *cursor) store(b byte) {
	c.field.buf = append(c.field.buf, b)
}

func (c *cursor) damage(at int) {
	c.field.damaged = true
	if !c.damaged {
		c.damaged = true
		c.damageAt = at
	}
}

func (c *cursor) finalize() {
	value := string(c.field.buf)
	c.record = append(c.record, Field{
		Value:      value,
		NeedsQuote: fieldNeedsQuote(value, c.comma),
		Damaged:    c.field.damaged,
	})
	c.field = pendingField{buf: c.field.buf[:0]}
	c.state = atBoundary
}
