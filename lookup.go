package csvmend

// Fields returns the values of the current record. The slice is cached until
// the record changes and must not be modified.
func (l *Line) Fields() []string {
	if l.values == nil {
		l.values = fieldValues(l.fields)
	}
	return l.values
}

// Headers returns the header names, or nil when no header has been captured.
// The slice must not be modified.
func (l *Line) Headers() []string {
	if l.header == nil {
		return nil
	}
	if l.names == nil {
		l.names = fieldValues(l.header)
	}
	return l.names
}

// HasHeader reports whether a header record has been captured.
func (l *Line) HasHeader() bool {
	return l.header != nil
}

// Value returns the current record's value in the column called name. The
// first column wins when a name repeats. It reports false when there is no
// header, no such column, or the record is shorter than the header.
func (l *Line) Value(name string) (string, bool) {
	if l.header == nil {
		return "", false
	}
	if l.index == nil {
		l.index = make(map[string]int, len(l.header))
		for i := range l.header {
			if _, ok := l.index[l.header[i].Value]; !ok {
				l.index[l.header[i].Value] = i
			}
		}
	}
	i, ok := l.index[name]
	if !ok || i >= len(l.fields) {
		return "", false
	}
	return l.fields[i].Value, true
}

// Len returns the number of fields in the current record.
func (l *Line) Len() int {
	return len(l.fields)
}

// Field returns the i-th field of the current record.
func (l *Line) Field(i int) Field {
	return l.fields[i]
}

// Record returns a copy of the current record.
func (l *Line) Record() []Field {
	return append([]Field(nil), l.fields...)
}

func fieldValues(fields []Field) []string {
	out := make([]string, len(fields))
	for i := range fields {
		out[i] = fields[i].Value
	}
	return out
}
