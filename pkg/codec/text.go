package codec

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ssargent/ypbank/pkg/record"
)

const keySeparator = ": "

// Text is the block-text codec: one "KEY: value" block per record, blocks
// separated by blank lines, "#" lines ignored.
//
// Double quotes are stripped from every value on read, so descriptions that
// contain quotes or line breaks do not survive a round trip. A key outside
// the eight record fields is an error, not ignored.
type Text struct{}

// Decode reads blocks until the end of input. A trailing block without a
// closing blank line is still a record.
func (Text) Decode(r io.Reader) (record.Set, error) {
	br := bufio.NewReader(r)
	set := record.Set{}

	var b block
	for lineNo := 1; ; lineNo++ {
		raw, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, readErr
		}
		if raw == "" && readErr == io.EOF {
			break
		}

		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "#"):
		case line == "":
			if b.count > 0 {
				tx, err := b.finish()
				if err != nil {
					return nil, err
				}
				set = append(set, tx)
				b = block{}
			}
		default:
			if err := b.add(line, lineNo); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	if b.count > 0 {
		tx, err := b.finish()
		if err != nil {
			return nil, err
		}
		set = append(set, tx)
	}

	return set, nil
}

// Encode writes one block per record, each preceded by a comment line.
func (Text) Encode(w io.Writer, set record.Set) error {
	bw := bufio.NewWriter(w)

	for _, tx := range set {
		if err := checkRecord(tx); err != nil {
			return err
		}
		fmt.Fprintf(bw, "# Record %d %s\n", sequenceNumber(tx.Description), tx.TxType)
		for i, value := range tx.Values() {
			if i == fieldCount-1 {
				value = `"` + value + `"`
			}
			bw.WriteString(record.FieldNames[i])
			bw.WriteString(keySeparator)
			bw.WriteString(value)
			bw.WriteByte('\n')
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// sequenceNumber is the informational label of the comment line: the
// trailing integer token of the description, or 0.
func sequenceNumber(description string) int64 {
	tokens := strings.Split(description, " ")
	n, err := strconv.ParseInt(tokens[len(tokens)-1], 10, 32)
	if err != nil {
		return 0
	}
	return n
}

// block accumulates the fields of one record
type block struct {
	values [fieldCount]string
	seen   [fieldCount]bool
	count  int
	start  int
}

func (b *block) add(line string, lineNo int) error {
	key, value, ok := strings.Cut(line, keySeparator)
	if !ok {
		return fmt.Errorf("%w: %q", ErrMalformedLine, line)
	}

	idx := fieldIndex(strings.TrimSpace(key))
	if idx < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if b.seen[idx] {
		return fmt.Errorf("%w: %s", ErrDuplicateField, record.FieldNames[idx])
	}

	if b.count == 0 {
		b.start = lineNo
	}
	b.values[idx] = strings.ReplaceAll(value, `"`, "")
	b.seen[idx] = true
	b.count++
	return nil
}

func (b *block) finish() (record.Transaction, error) {
	for i, ok := range b.seen {
		if !ok {
			return record.Transaction{}, fmt.Errorf("record starting at line %d: %w: %s", b.start, ErrMissingField, record.FieldNames[i])
		}
	}
	tx, err := parseTransaction(&b.values)
	if err != nil {
		return record.Transaction{}, fmt.Errorf("record starting at line %d: %w", b.start, err)
	}
	return tx, nil
}
