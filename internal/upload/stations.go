// Package upload parses the St.ID lists analysts upload for highlighting.
package upload

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jengzang/reallocation-screener/internal/screening"
)

// DefaultStationColumn is the header holding station identifiers
const DefaultStationColumn = "St.ID"

// ErrMalformed is returned when the upload is not readable as CSV
var ErrMalformed = errors.New("malformed csv")

// ParseStationIDs reads a CSV upload and returns the normalized identifiers found
// under column. A file without that column, or without any rows, yields an empty set.
// UTF-8 (with or without BOM), UTF-16 with BOM and Shift_JIS are accepted.
func ParseStationIDs(r io.Reader, column string) (screening.StationSet, error) {
	if column == "" {
		column = DefaultStationColumn
	}

	text, err := decode(r)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return screening.NewStationSet(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	idx := -1
	for i, h := range header {
		if strings.TrimSpace(h) == column {
			idx = i
			break
		}
	}

	var ids []string
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if idx >= 0 && idx < len(row) {
			ids = append(ids, row[idx])
		}
	}

	return screening.NewStationSet(ids), nil
}

var utf8BOM = []byte("\xef\xbb\xbf")

func hasUTF16BOM(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte("\xff\xfe")) || bytes.HasPrefix(raw, []byte("\xfe\xff"))
}

// decode returns the upload as UTF-8 without a byte-order mark
func decode(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	// the choice is made on the raw bytes: a decoded U+FFFD may be genuine text
	if hasUTF16BOM(raw) || utf8.Valid(bytes.TrimPrefix(raw, utf8BOM)) {
		text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return text, nil
	}

	text, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported encoding", ErrMalformed)
	}
	return text, nil
}
