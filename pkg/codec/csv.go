package codec

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ssargent/ypbank/pkg/record"
)

const utf8BOM = "\ufeff"

// CSV is the delimited-text codec: a header row followed by one row per record.
//
// Descriptions are always written inside double quotes with embedded quotes
// doubled, so quotes, commas and "\n" line breaks survive a round trip. A
// "\r\n" inside a description is read back as "\n".
type CSV struct{}

// Decode reads a header row and then one record per row. Rows are mapped to
// fields by position.
func (CSV) Decode(r io.Reader) (record.Set, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	set := record.Set{}

	header, err := cr.Read()
	if err == io.EOF {
		return set, nil
	}
	if err != nil {
		return nil, csvReadError(err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvReadError(err)
		}

		line, _ := cr.FieldPos(0)
		tx, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		set = append(set, tx)
	}

	return set, nil
}

// Encode writes the header row and one row per record.
func (CSV) Encode(w io.Writer, set record.Set) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(strings.Join(record.FieldNames, ","))
	bw.WriteByte('\n')

	for _, tx := range set {
		if err := checkRecord(tx); err != nil {
			return err
		}
		values := tx.Values()
		bw.WriteString(strings.Join(values[:fieldCount-1], ","))
		bw.WriteString(`,"`)
		bw.WriteString(strings.ReplaceAll(tx.Description, `"`, `""`))
		bw.WriteString("\"\n")
	}

	// bufio.Writer errors are sticky; Flush reports the first one.
	return bw.Flush()
}

func checkHeader(header []string) error {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	if len(header) != fieldCount {
		return fmt.Errorf("%w: got %d columns, want %d (%s)", ErrInvalidHeader, len(header), fieldCount, strings.Join(record.FieldNames, ","))
	}
	for i, name := range record.FieldNames {
		if strings.TrimSpace(header[i]) != name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrInvalidHeader, i+1, header[i], name)
		}
	}
	return nil
}

func parseRow(row []string) (record.Transaction, error) {
	if len(row) < fieldCount {
		return record.Transaction{}, fmt.Errorf("%w: %s (row has %d of %d fields)", ErrMissingField, record.FieldNames[len(row)], len(row), fieldCount)
	}
	if len(row) > fieldCount {
		return record.Transaction{}, fmt.Errorf("%w: row has %d fields, want %d", ErrMalformedLine, len(row), fieldCount)
	}

	var values [fieldCount]string
	copy(values[:], row)
	return parseTransaction(&values)
}

// csvReadError separates tokenizer failures, which are malformed data, from
// failures of the underlying reader, which are returned unchanged.
func csvReadError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %v", ErrMalformedLine, pe)
	}
	return err
}
