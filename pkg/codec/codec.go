package codec

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ssargent/ypbank/pkg/record"
)

// Codec reads and writes a record set in one physical encoding
type Codec interface {
	// Decode reads the whole stream. On error no records are returned.
	Decode(r io.Reader) (record.Set, error)

	// Encode writes every record of set to w.
	Encode(w io.Writer, set record.Set) error
}

var (
	_ Codec = CSV{}
	_ Codec = Text{}
	_ Codec = Binary{}
)

// Format names a codec
type Format string

const (
	FormatCSV    Format = "csv"
	FormatText   Format = "txt"
	FormatBinary Format = "binary"
)

// ErrUnknownFormat is returned for a format name no codec is registered under.
var ErrUnknownFormat = errors.New("unknown format")

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatCSV, FormatText, FormatBinary}
}

// ParseFormat resolves a format name. Matching is case-insensitive and
// accepts "text" and "bin" as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	case "binary", "bin":
		return FormatBinary, nil
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, formatList())
}

// Codec returns the codec for f.
func (f Format) Codec() (Codec, error) {
	switch f {
	case FormatCSV:
		return CSV{}, nil
	case FormatText:
		return Text{}, nil
	case FormatBinary:
		return Binary{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// ContentType is the media type used when a record set is served over HTTP.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	}
	return "application/octet-stream"
}

// String implements pflag.Value.
func (f *Format) String() string {
	return string(*f)
}

// Set implements pflag.Value.
func (f *Format) Set(name string) error {
	v, err := ParseFormat(name)
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string {
	return "format"
}

// Convert decodes r as from and encodes the records to w as to. It returns
// the number of records converted. Nothing is written when decoding fails.
func Convert(r io.Reader, from Format, w io.Writer, to Format) (int, error) {
	src, err := from.Codec()
	if err != nil {
		return 0, err
	}
	dst, err := to.Codec()
	if err != nil {
		return 0, err
	}

	set, err := src.Decode(r)
	if err != nil {
		return 0, fmt.Errorf("decode %s: %w", from, err)
	}
	if err := dst.Encode(w, set); err != nil {
		return 0, fmt.Errorf("encode %s: %w", to, err)
	}
	return len(set), nil
}

func formatList() string {
	names := make([]string, 0, len(Formats()))
	for _, f := range Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}
