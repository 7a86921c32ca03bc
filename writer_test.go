package csvmend

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestWriterWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records [][]string
		config  func(*Writer)
		want    string
	}{
		{name: "plain", records: [][]string{{"id", "name", "qty"}}, want: "id,name,qty\n"},
		{name: "twoRecords", records: [][]string{{"1", "bolt"}, {"2", "nut"}}, want: "1,bolt\n2,nut\n"},
		{name: "leadingEmpty", records: [][]string{{"", "x"}}, want: ",x\n"},
		{name: "onlyEmpty", records: [][]string{{""}}, want: "\"\"\n"},
		{name: "delimiterQuoted", records: [][]string{{"Smith, J."}}, want: "\"Smith, J.\"\n"},
		{name: "strayQuoteDoubled", records: [][]string{{`O"Brien`, "ok"}}, want: "\"O\"\"Brien\",ok\n"},
		{name: "lineFeedQuoted", records: [][]string{{"line1\nline2", "z"}}, want: "\"line1\nline2\",z\n"},
		{name: "carriageReturnQuoted", records: [][]string{{"x\ry"}}, want: "\"x\ry\"\n"},
		{name: "tabQuoted", records: [][]string{{"col\tumn", "v"}}, want: "\"col\tumn\",v\n"},
		{
			name:    "forceQuoteAll",
			records: [][]string{{"1", ""}},
			config:  func(w *Writer) { w.AlwaysQuote = true },
			want:    "\"1\",\"\"\n",
		},
		{
			name:    "pipeDelimiter",
			records: [][]string{{"a|b", "a,b"}},
			config:  func(w *Writer) { w.Comma = '|' },
			want:    "\"a|b\"|a,b\n",
		},
		{
			name:    "crlfTerminator",
			records: [][]string{{"h"}, {"v"}},
			config:  func(w *Writer) { w.UseCRLF = true },
			want:    "h\r\nv\r\n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			w := NewWriter(&buf)
			if tc.config != nil {
				tc.config(w)
			}
			for _, rec := range tc.records {
				if err := w.Write(rec); err != nil {
					t.Fatalf("Write() error = %v", err)
				}
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("unexpected output:\n got: %q\nwant: %q", got, tc.want)
			}
		})
	}
}

func TestWriterWriteAll(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewWriter(&buf)

	records := [][]string{
		{"sku", "note"},
		{"A-1", `said "hi"`},
	}

	if err := w.WriteAll(records); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	want := "sku,note\nA-1,\"said \"\"hi\"\"\"\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output got %q want %q", got, want)
	}
}

func TestWriterReset(t *testing.T) {
	t.Parallel()

	var buf1 bytes.Buffer
	var buf2 bytes.Buffer

	var w Writer
	w.Reset(&buf1)

	if err := w.Write([]string{"a"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := buf1.String(); got != "a\n" {
		t.Fatalf("unexpected buf1 contents %q", got)
	}

	w.Comma = ';'
	w.UseCRLF = true
	w.Reset(&buf2)
	if err := w.Write([]string{"x", "y"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := buf2.String(); got != "x;y\r\n" {
		t.Fatalf("unexpected buf2 contents %q", got)
	}
}

func TestWriterWriteLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		comma  byte
		input  string
		config func(*Writer)
		want   string
	}{
		{
			name:  "repairedQuote",
			comma: ',',
			input: `1"23,abc,",",""""`,
			want:  "\"1\"\"23\",abc,\",\",\"\"\"\"\n",
		},
		{
			name:  "changeDelimiter",
			comma: ',',
			input: `a|b,"c,d"`,
			config: func(w *Writer) {
				w.Comma = '|'
			},
			want: "\"a|b\"|\"c,d\"\n",
		},
		{
			name:  "alwaysQuote",
			comma: ';',
			input: "x;y",
			config: func(w *Writer) {
				w.AlwaysQuote = true
				w.UseCRLF = true
			},
			want: "\"x\";\"y\"\r\n",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			l := NewLine(tc.comma, false)
			l.Parse(tc.input)

			var buf bytes.Buffer
			w := NewWriter(&buf)
			if tc.config != nil {
				tc.config(w)
			}
			if err := w.WriteLine(l); err != nil {
				t.Fatalf("WriteLine() error = %v", err)
			}
			if err := w.Flush(); err != nil {
				t.Fatalf("Flush() error = %v", err)
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("unexpected output:\n got: %q\nwant: %q", got, tc.want)
			}
		})
	}
}

func TestWriterEmptyRecordRoundTrip(t *testing.T) {
	t.Parallel()

	records := [][]string{{"name"}, {""}, {"bob"}}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got, want := buf.String(), "name\n\"\"\nbob\n"; got != want {
		t.Fatalf("WriteAll() output = %q, want %q", got, want)
	}

	got, err := NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if !reflect.DeepEqual(got, records) {
		t.Fatalf("ReadAll() = %q, want %q", got, records)
	}

	// Repaired lines go through WriteLine, which must keep the record too.
	l := NewLine(',', false)
	var out bytes.Buffer
	w.Reset(&out)
	for _, line := range []string{"name", "", "bob"} {
		l.Parse(line)
		if err := w.WriteLine(l); err != nil {
			t.Fatalf("WriteLine() error = %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if got := out.String(); got != buf.String() {
		t.Fatalf("WriteLine() output = %q, want %q", got, buf.String())
	}
}

func TestWriterNil(t *testing.T) {
	t.Parallel()

	var w *Writer
	if err := w.Write([]string{"a"}); !errors.Is(err, errNilWriter) {
		t.Fatalf("Write() on nil writer error = %v", err)
	}
	if err := w.Flush(); !errors.Is(err, errNilWriter) {
		t.Fatalf("Flush() on nil writer error = %v", err)
	}
	var zero Writer
	if err := zero.Write([]string{"a"}); !errors.Is(err, errWriterNoTarget) {
		t.Fatalf("Write() without destination error = %v", err)
	}
}

type flushFailWriter struct {
	fail error
}

func (f *flushFailWriter) Write([]byte) (int, error) {
	return 0, f.fail
}

func TestWriterFlushError(t *testing.T) {
	t.Parallel()

	exp := errors.New("flush failed")
	w := NewWriter(&flushFailWriter{fail: exp})

	if err := w.Write([]string{"a"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); !errors.Is(err, exp) {
		t.Fatalf("expected flush error %v, got %v", exp, err)
	}
	if err := w.Write([]string{"b"}); !errors.Is(err, exp) {
		t.Fatalf("Write() should return stored error %v, got %v", exp, err)
	}
}

func TestWriterErrorMethod(t *testing.T) {
	t.Parallel()

	w := NewWriter(&strings.Builder{})
	if err := w.Error(); err != nil {
		t.Fatalf("expected nil error from fresh writer, got %v", err)
	}

	exp := errors.New("flush failed")
	w.Reset(&flushFailWriter{fail: exp})
	if err := w.Write([]string{"a"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Flush(); !errors.Is(err, exp) {
		t.Fatalf("expected flush error %v, got %v", exp, err)
	}
	if err := w.Error(); !errors.Is(err, exp) {
		t.Fatalf("Error() should return %v, got %v", exp, err)
	}
}
