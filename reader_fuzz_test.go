package csvmend

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func FuzzLineRoundTrip(f *testing.F) {
	seeds := []string{
		"",
		"a,b,c",
		`123,abc,",",""""`,
		`1"23,abc,",",""""`,
		"a,\"b\nc\",d",
		"\"unterminated",
		`"a""`,
		"x\t\"y\"\x01",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 1<<12 {
			t.Skip()
		}

		src := NewLine(',', false)
		ok := src.Parse(input)
		if src.Len() == 0 {
			t.Fatalf("Parse(%q) produced no fields", truncateForMessage(input))
		}
		if !ok {
			return
		}

		for _, force := range []bool{false, true} {
			text := src.Text(force)
			dst := NewLine(',', false)
			if !dst.Parse(text) {
				t.Fatalf("canonical text %q reported damage, input=%q", text, truncateForMessage(input))
			}
			if !reflect.DeepEqual(dst.Fields(), src.Fields()) {
				t.Fatalf("round trip mismatch:\nsrc=%q\ndst=%q\ninput=%q", src.Fields(), dst.Fields(), truncateForMessage(input))
			}
		}
	})
}

func FuzzReaderConsistency(f *testing.F) {
	seeds := []string{
		"",
		"a,b,c\n",
		"a,\"b,b\",c\n",
		"a,\"b\nc\",d\n",
		"\"unterminated\n",
		"a\"b,c\n",
		"one\r\ntwo\r\n",
		"trailing,newline\n",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		if len(input) > 1<<12 {
			t.Skip()
		}

		recordsChunked, errChunked := readRecordsAll(strings.NewReader(input))
		recordsByte, errByte := readRecordsAll(iotest.OneByteReader(strings.NewReader(input)))

		if !sameReaderError(errChunked, errByte) {
			t.Fatalf("error mismatch: chunked=%v byte=%v input=%q", errChunked, errByte, truncateForMessage(input))
		}
		if !reflect.DeepEqual(recordsChunked, recordsByte) {
			t.Fatalf("records mismatch:\nchunked=%q\nbyte=%q\ninput=%q", recordsChunked, recordsByte, truncateForMessage(input))
		}
	})
}

func readRecordsAll(src io.Reader) ([][]string, []error) {
	r := NewReader(src)
	var out [][]string
	var errs []error
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, errs
		}
		if err != nil && !errors.Is(err, ErrDamagedQuote) {
			return out, append(errs, err)
		}
		errs = append(errs, err)
		out = append(out, rec)
	}
}

func sameReaderError(a, b []error) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] == nil || b[i] == nil {
			if a[i] != b[i] {
				return false
			}
			continue
		}
		if a[i].Error() != b[i].Error() {
			return false
		}
	}
	return true
}

func truncateForMessage(s string) string {
	const max = 256
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
