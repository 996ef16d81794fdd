// Package record defines the bank transaction record shared by every codec.
package record

import (
	"fmt"
	"strconv"
)

// Field names in canonical order. The delimited-text header and the
// block-text keys both use these literals.
const (
	FieldTxID        = "TX_ID"
	FieldTxType      = "TX_TYPE"
	FieldFromUserID  = "FROM_USER_ID"
	FieldToUserID    = "TO_USER_ID"
	FieldAmount      = "AMOUNT"
	FieldTimestamp   = "TIMESTAMP"
	FieldStatus      = "STATUS"
	FieldDescription = "DESCRIPTION"
)

// FieldNames lists the eight record fields in wire order.
var FieldNames = []string{
	FieldTxID,
	FieldTxType,
	FieldFromUserID,
	FieldToUserID,
	FieldAmount,
	FieldTimestamp,
	FieldStatus,
	FieldDescription,
}

// Transaction is a single bank transaction record
type Transaction struct {
	TxID        uint64 `json:"tx_id"`
	TxType      TxType `json:"tx_type"`
	FromUserID  uint64 `json:"from_user_id"`
	ToUserID    uint64 `json:"to_user_id"`
	Amount      uint64 `json:"amount"`    // smallest currency unit
	Timestamp   uint64 `json:"timestamp"` // epoch milliseconds
	Status      Status `json:"status"`
	Description string `json:"description"`
}

// Set is an ordered sequence of transactions as produced by one decode.
type Set []Transaction

// Values returns the textual value of every field, in FieldNames order.
func (t Transaction) Values() []string {
	return []string{
		strconv.FormatUint(t.TxID, 10),
		t.TxType.String(),
		strconv.FormatUint(t.FromUserID, 10),
		strconv.FormatUint(t.ToUserID, 10),
		strconv.FormatUint(t.Amount, 10),
		strconv.FormatUint(t.Timestamp, 10),
		t.Status.String(),
		t.Description,
	}
}

func (t Transaction) String() string {
	return fmt.Sprintf("Transaction{tx_id: %d, tx_type: %s, from_user_id: %d, to_user_id: %d, amount: %d, timestamp: %d, status: %s, description: %q}",
		t.TxID, t.TxType, t.FromUserID, t.ToUserID, t.Amount, t.Timestamp, t.Status, t.Description)
}

// FieldDiff describes one field that differs between two records
type FieldDiff struct {
	Field string `json:"field"`
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Diff compares a and b field by field and returns the differing fields in
// canonical order. An empty result means the records are equal.
func Diff(a, b Transaction) []FieldDiff {
	if a == b {
		return nil
	}
	left, right := a.Values(), b.Values()
	var diffs []FieldDiff
	for i, name := range FieldNames {
		if left[i] != right[i] {
			diffs = append(diffs, FieldDiff{Field: name, Left: left[i], Right: right[i]})
		}
	}
	return diffs
}
