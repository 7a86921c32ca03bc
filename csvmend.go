// # csvmend: Repairing Record Parser for Delimited Text
//
// csvmend parses one record of delimiter-separated text at a time, repairs quoting that does not follow RFC 4180, and re-serializes the record in a canonical form with minimal quoting.
//
// # Features
//
// - `Line`: a per-record tokenizer that never fails on bad quoting. Damaged quotes are kept as literal text and reported per field and per record.
// - Resumable parsing via `Line.ParseFrom` for quoted fields that contain line breaks.
// - Header capture, name-based lookup with `Line.Value`, and field-count reconciliation with `Line.Reconcile`.
// - Streaming `Reader` and buffered `Writer` built on `Line` for whole files.
// - Location-aware `ParseError` wrapping `ErrDamagedQuote`.
//
// # Getting Started
//
//	l := csvmend.DefaultLine()
//	l.Parse("id,name")
//	if !l.Parse(`7,"O"Brien"`) {
//		// still usable: l.Fields() == []string{"7", `O"Brien"`}
//	}
//	name, _ := l.Value("name")
//	canonical := l.Text(false)
//
// A Line is not safe for concurrent use.
package csvmend
