package codec

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/ssargent/ypbank/pkg/record"
)

const fieldCount = 8

// fieldIndex returns the canonical position of a field name, or -1.
func fieldIndex(name string) int {
	for i, n := range record.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

// parseTransaction builds a record from textual values in canonical field order.
func parseTransaction(values *[fieldCount]string) (record.Transaction, error) {
	var tx record.Transaction
	var err error

	if tx.TxID, err = parseUint(record.FieldTxID, values[0]); err != nil {
		return record.Transaction{}, err
	}
	if tx.TxType, err = record.ParseTxType(values[1]); err != nil {
		return record.Transaction{}, err
	}
	if tx.FromUserID, err = parseUint(record.FieldFromUserID, values[2]); err != nil {
		return record.Transaction{}, err
	}
	if tx.ToUserID, err = parseUint(record.FieldToUserID, values[3]); err != nil {
		return record.Transaction{}, err
	}
	if tx.Amount, err = parseUint(record.FieldAmount, values[4]); err != nil {
		return record.Transaction{}, err
	}
	if tx.Timestamp, err = parseUint(record.FieldTimestamp, values[5]); err != nil {
		return record.Transaction{}, err
	}
	if tx.Status, err = record.ParseStatus(values[6]); err != nil {
		return record.Transaction{}, err
	}
	if err = checkText(values[7]); err != nil {
		return record.Transaction{}, err
	}
	tx.Description = values[7]

	return tx, nil
}

func parseUint(field, value string) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s = %q", ErrInvalidNumber, field, value)
	}
	return v, nil
}

// checkRecord rejects in-memory records that no decoder would accept back:
// undeclared enum values or a description that is not UTF-8.
func checkRecord(tx record.Transaction) error {
	if !tx.TxType.Valid() {
		return fmt.Errorf("%w: %s = %d", ErrInvalidEnum, record.FieldTxType, tx.TxType.Code())
	}
	if !tx.Status.Valid() {
		return fmt.Errorf("%w: %s = %d", ErrInvalidEnum, record.FieldStatus, tx.Status.Code())
	}
	return checkText(tx.Description)
}

func checkText(description string) error {
	if !utf8.ValidString(description) {
		return fmt.Errorf("%w in %s", ErrInvalidText, record.FieldDescription)
	}
	return nil
}
