package csvmend

import (
	"fmt"
	"strings"
)

// Action describes how Reconcile adjusted a record.
type Action uint8

const (
	// Unchanged means the record already had the header's field count, or there is no header.
	Unchanged Action = iota
	// Padded means empty fields were appended.
	Padded
	// Merged means trailing fields were joined into the last header column.
	Merged
)

// String returns the lower-case name of the action.
func (a Action) String() string {
	switch a {
	case Unchanged:
		return "unchanged"
	case Padded:
		return "padded"
	case Merged:
		return "merged"
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// Reconciliation is the outcome of Reconcile.
type Reconciliation struct {
	Action Action
	// From is the field count before reconciliation.
	From int
	// To is the field count after reconciliation.
	To int
}

// Reconcile adjusts the current record to the header's field count. Short
// records are padded with empty fields. Long records have every field from the
// last header column onward joined with the delimiter into one quoted field.
// Without a header the record is left alone.
func (l *Line) Reconcile() Reconciliation {
	n := len(l.fields)
	r := Reconciliation{Action: Unchanged, From: n, To: n}
	h := len(l.header)
	if h == 0 || n == h {
		return r
	}

	if n < h {
		for len(l.fields) < h {
			l.fields = append(l.fields, Field{})
		}
		r.Action = Padded
	} else {
		tail := l.fields[h-1:]
		parts := make([]string, len(tail))
		damaged := false
		for i := range tail {
			parts[i] = tail[i].Value
			damaged = damaged || tail[i].Damaged
		}
		l.fields[h-1] = Field{
			Value:      strings.Join(parts, string(l.comma)),
			NeedsQuote: true,
			Damaged:    damaged,
		}
		l.fields = l.fields[:h]
		r.Action = Merged
	}
	l.values = nil
	r.To = h
	return r
}
