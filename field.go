package csvmend

import "strings"

// Field is one value of a parsed record.
type Field struct {
	// Value is the logical field content with escaped quotes collapsed.
	Value string
	// NeedsQuote is set when Value must be quoted to serialize back to the same field.
	NeedsQuote bool
	// Damaged is set when the field contained a quote where quoting rules do not allow one.
	Damaged bool
}

// fieldNeedsQuote reports whether value contains the delimiter, a quote or one
// of the control characters that are only preserved inside quotes.
func fieldNeedsQuote(value string, comma byte) bool {
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case quote, comma, '\r', '\n', '\t':
			return true
		}
	}
	return false
}

// loneEmpty reports whether a field is the only one of its record and empty.
// Such a record must be quoted or it serializes to a blank line.
func loneEmpty(fields int, value string) bool {
	return fields == 1 && value == ""
}

// appendField appends value to dst, wrapping it in quotes and doubling its
// internal quotes when quoted is set.
func appendField(dst []byte, value string, quoted bool) []byte {
	if !quoted {
		return append(dst, value...)
	}
	dst = append(dst, quote)
	for {
		i := strings.IndexByte(value, quote)
		if i < 0 {
			break
		}
		dst = append(dst, value[:i+1]...)
		dst = append(dst, quote)
		value = value[i+1:]
	}
	dst = append(dst, value...)
	return append(dst, quote)
}
