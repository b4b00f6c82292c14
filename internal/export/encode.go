package export

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

const (
	fieldSep = ','
	quote    = '"'
	lineSep  = "\n"
)

// Encode writes t to w in format f.
func Encode(w io.Writer, t Table, f Format) error {
	switch f {
	case FormatStructured:
		return EncodeStructured(w, t)
	case FormatDelimited:
		return EncodeDelimited(w, t)
	}
	return ErrUnknownFormat
}

// EncodeStructured writes the table unmodified as JSON.
func EncodeStructured(w io.Writer, t Table) error {
	if t.Rows == nil {
		t.Rows = [][]string{}
	}
	return json.NewEncoder(w).Encode(t)
}

// EncodeDelimited writes the header line followed by one line per row.
// Fields are comma-separated; a field containing a comma, a quote, a newline
// or a carriage return is wrapped in quotes with inner quotes doubled.
func EncodeDelimited(w io.Writer, t Table) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, t.Headers); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writeRecord(bw, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(fieldSep); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(QuoteField(f)); err != nil {
			return err
		}
	}
	_, err := w.WriteString(lineSep)
	return err
}

// QuoteField applies the delimited-text quoting rule to a single value.
func QuoteField(s string) string {
	if !strings.ContainsAny(s, string([]rune{fieldSep, quote, '\n', '\r'})) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(quote)
	for _, r := range s {
		if r == quote {
			b.WriteByte(quote)
		}
		b.WriteRune(r)
	}
	b.WriteByte(quote)
	return b.String()
}

// ContentType returns the MIME type for format f.
func ContentType(f Format) string {
	if f == FormatDelimited {
		return "text/csv; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// FileExtension returns the download file extension for format f.
func FileExtension(f Format) string {
	if f == FormatDelimited {
		return "csv"
	}
	return "json"
}
