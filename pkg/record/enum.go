package record

import (
	"errors"
	"fmt"
)

// TxType is the kind of money movement a transaction represents.
// The numeric value is the binary wire code.
type TxType uint8

const (
	Deposit    TxType = 0
	Transfer   TxType = 1
	Withdrawal TxType = 2
)

// Status is the outcome of a transaction. The numeric value is the binary wire code.
type Status uint8

const (
	Success Status = 0
	Failure Status = 1
	Pending Status = 2
)

// ErrInvalidValue is returned (wrapped) when an enumeration literal or code is
// outside its closed set.
var ErrInvalidValue = errors.New("invalid enum value")

func (t TxType) String() string {
	switch t {
	case Deposit:
		return "DEPOSIT"
	case Transfer:
		return "TRANSFER"
	case Withdrawal:
		return "WITHDRAWAL"
	}
	return fmt.Sprintf("TxType(%d)", uint8(t))
}

// Code returns the binary wire code.
func (t TxType) Code() uint8 { return uint8(t) }

// Valid reports whether t is one of the declared variants.
func (t TxType) Valid() bool { return t <= Withdrawal }

// ParseTxType matches s exactly (case-sensitive) against the literal names.
func ParseTxType(s string) (TxType, error) {
	switch s {
	case "DEPOSIT":
		return Deposit, nil
	case "TRANSFER":
		return Transfer, nil
	case "WITHDRAWAL":
		return Withdrawal, nil
	}
	return 0, fmt.Errorf("%w: %s = %q", ErrInvalidValue, FieldTxType, s)
}

// TxTypeFromCode maps a binary wire code to a TxType.
func TxTypeFromCode(code uint8) (TxType, error) {
	t := TxType(code)
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %s = %d", ErrInvalidValue, FieldTxType, code)
	}
	return t, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t TxType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s = %d", ErrInvalidValue, FieldTxType, uint8(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TxType) UnmarshalText(text []byte) error {
	v, err := ParseTxType(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

func (s Status) String() string {
	switch s {
	case Success:
		return "SUCCESS"
	case Failure:
		return "FAILURE"
	case Pending:
		return "PENDING"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Code returns the binary wire code.
func (s Status) Code() uint8 { return uint8(s) }

// Valid reports whether s is one of the declared variants.
func (s Status) Valid() bool { return s <= Pending }

// ParseStatus matches s exactly (case-sensitive) against the literal names.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "SUCCESS":
		return Success, nil
	case "FAILURE":
		return Failure, nil
	case "PENDING":
		return Pending, nil
	}
	return 0, fmt.Errorf("%w: %s = %q", ErrInvalidValue, FieldStatus, s)
}

// StatusFromCode maps a binary wire code to a Status.
func StatusFromCode(code uint8) (Status, error) {
	s := Status(code)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %s = %d", ErrInvalidValue, FieldStatus, code)
	}
	return s, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %s = %d", ErrInvalidValue, FieldStatus, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
