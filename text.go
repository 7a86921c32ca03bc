package csvmend

// Text returns the canonical form of the current record. Fields that need
// quoting, or every field when forceQuote is set, are wrapped in quotes with
// internal quotes doubled. A record of one empty field is written as "" so it
// does not read back as a blank line.
func (l *Line) Text(forceQuote bool) string {
	return string(l.AppendText(nil, forceQuote))
}

// AppendText appends the canonical form of the current record to dst and
// returns the extended buffer.
func (l *Line) AppendText(dst []byte, forceQuote bool) []byte {
	for i := range l.fields {
		if i > 0 {
			dst = append(dst, l.comma)
		}
		f := &l.fields[i]
		dst = appendField(dst, f.Value, forceQuote || f.NeedsQuote || loneEmpty(len(l.fields), f.Value))
	}
	return dst
}
