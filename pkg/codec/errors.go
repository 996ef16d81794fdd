package codec

import (
	"errors"

	"github.com/ssargent/ypbank/pkg/record"
)

// FormatError marks malformed input data. Every decode failure that is not an
// I/O failure of the underlying reader wraps one of the sentinels below.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return e.Message
}

// Errors
var (
	ErrInvalidMagic     = &FormatError{"invalid magic"}
	ErrTruncated        = &FormatError{"truncated stream"}
	ErrShortDescription = &FormatError{"not enough bytes for description"}
	ErrLengthMismatch   = &FormatError{"description length mismatch"}
	ErrRecordTooLarge   = &FormatError{"record too large"}
	ErrInvalidText      = &FormatError{"invalid UTF-8"}
	ErrMissingField     = &FormatError{"missing key"}
	ErrDuplicateField   = &FormatError{"duplicate key"}
	ErrUnknownField     = &FormatError{"unknown key"}
	ErrMalformedLine    = &FormatError{"malformed line"}
	ErrInvalidNumber    = &FormatError{"invalid number"}
	ErrInvalidHeader    = &FormatError{"invalid header"}
)

// ErrInvalidEnum is wrapped when a tx_type or status code or literal is
// outside its closed set. It is the record package's sentinel so callers can
// match either one.
var ErrInvalidEnum = record.ErrInvalidValue

// IsDataError reports whether err was caused by malformed input, as opposed
// to a failure of the underlying reader or writer.
func IsDataError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe) || errors.Is(err, record.ErrInvalidValue)
}
