package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ssargent/ypbank/pkg/record"
)

const (
	// Magic identifies the start of every frame ("YPBN").
	Magic uint32 = 0x5950424E

	// HeaderSize is magic(4) + record_size(4).
	HeaderSize = 8

	// FixedBodySize is the body without the description:
	// tx_id(8) tx_type(1) from(8) to(8) amount(8) timestamp(8) status(1) desc_len(4)
	FixedBodySize = 46

	// MaxDescriptionSize is the largest description a single frame can carry.
	MaxDescriptionSize = math.MaxUint32 - FixedBodySize
)

// Binary is the YPBN framed binary codec
type Binary struct{}

// Decode reads back-to-back frames until the stream ends on a frame boundary.
func (Binary) Decode(r io.Reader) (record.Set, error) {
	fr := NewFrameReader(r)
	set := record.Set{}
	for fr.Next() {
		set = append(set, fr.Record())
	}
	if err := fr.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// Encode writes one frame per record.
func (Binary) Encode(w io.Writer, set record.Set) error {
	fw := NewFrameWriter(w)
	for _, tx := range set {
		if err := fw.Write(tx); err != nil {
			return err
		}
	}
	return fw.Flush()
}

// AppendFrame appends the encoded frame for tx to dst
func AppendFrame(dst []byte, tx record.Transaction) ([]byte, error) {
	if err := checkRecord(tx); err != nil {
		return dst, err
	}
	if uint64(len(tx.Description)) > MaxDescriptionSize {
		return dst, fmt.Errorf("%w: description is %d bytes, limit %d", ErrRecordTooLarge, len(tx.Description), uint64(MaxDescriptionSize))
	}
	descLen := uint32(len(tx.Description))

	dst = binary.BigEndian.AppendUint32(dst, Magic)
	dst = binary.BigEndian.AppendUint32(dst, FixedBodySize+descLen)
	dst = binary.BigEndian.AppendUint64(dst, tx.TxID)
	dst = append(dst, tx.TxType.Code())
	dst = binary.BigEndian.AppendUint64(dst, tx.FromUserID)
	dst = binary.BigEndian.AppendUint64(dst, tx.ToUserID)
	dst = binary.BigEndian.AppendUint64(dst, tx.Amount)
	dst = binary.BigEndian.AppendUint64(dst, tx.Timestamp)
	dst = append(dst, tx.Status.Code())
	dst = binary.BigEndian.AppendUint32(dst, descLen)
	dst = append(dst, tx.Description...)
	return dst, nil
}

// DecodeFrame decodes exactly one frame. Trailing bytes are an error.
func DecodeFrame(data []byte) (record.Transaction, error) {
	r := bytes.NewReader(data)
	var body bytes.Buffer
	tx, err := readFrame(r, &body)
	if err == io.EOF {
		return tx, fmt.Errorf("%w: empty frame", ErrTruncated)
	}
	if err != nil {
		return tx, err
	}
	if r.Len() > 0 {
		return tx, fmt.Errorf("%w: %d trailing bytes after frame", ErrLengthMismatch, r.Len())
	}
	return tx, nil
}

// readFrame reads one header and body. It returns io.EOF only when the
// stream was exhausted before the first header byte.
func readFrame(r io.Reader, body *bytes.Buffer) (record.Transaction, error) {
	var header [HeaderSize]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return record.Transaction{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, n)
		}
		return record.Transaction{}, err
	}

	magic := binary.BigEndian.Uint32(header[0:4])
	if magic != Magic {
		return record.Transaction{}, fmt.Errorf("%w 0x%08X, want 0x%08X", ErrInvalidMagic, magic, Magic)
	}

	size := binary.BigEndian.Uint32(header[4:8])
	if size < FixedBodySize {
		return record.Transaction{}, fmt.Errorf("%w: record_size %d is smaller than the %d-byte fixed body", ErrTruncated, size, FixedBodySize)
	}

	// Grow with the data actually present rather than trusting record_size.
	body.Reset()
	got, err := io.CopyN(body, r, int64(size))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return record.Transaction{}, fmt.Errorf("%w: body needs %d bytes, have %d", ErrTruncated, size, got)
		}
		return record.Transaction{}, err
	}

	return parseBody(body.Bytes())
}

func parseBody(body []byte) (record.Transaction, error) {
	var tx record.Transaction
	var err error

	tx.TxID = binary.BigEndian.Uint64(body[0:8])
	if tx.TxType, err = record.TxTypeFromCode(body[8]); err != nil {
		return record.Transaction{}, err
	}
	tx.FromUserID = binary.BigEndian.Uint64(body[9:17])
	tx.ToUserID = binary.BigEndian.Uint64(body[17:25])
	tx.Amount = binary.BigEndian.Uint64(body[25:33])
	tx.Timestamp = binary.BigEndian.Uint64(body[33:41])
	if tx.Status, err = record.StatusFromCode(body[41]); err != nil {
		return record.Transaction{}, err
	}
	descLen := binary.BigEndian.Uint32(body[42:46])

	rest := body[FixedBodySize:]
	if uint64(descLen) > uint64(len(rest)) {
		return record.Transaction{}, fmt.Errorf("%w: need %d, have %d", ErrShortDescription, descLen, len(rest))
	}
	if uint64(descLen) < uint64(len(rest)) {
		return record.Transaction{}, fmt.Errorf("%w: desc_len is %d but record_size leaves %d bytes", ErrLengthMismatch, descLen, len(rest))
	}
	tx.Description = string(rest)
	if err := checkText(tx.Description); err != nil {
		return record.Transaction{}, err
	}

	return tx, nil
}

// FrameReader provides sequential access to the frames of a binary stream
type FrameReader struct {
	reader *bufio.Reader
	body   bytes.Buffer
	record record.Transaction
	offset int64
	err    error
	done   bool
}

// NewFrameReader creates a frame reader over r
func NewFrameReader(r io.Reader) *FrameReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &FrameReader{reader: br}
}

// Next advances to the next frame. It returns false at the end of the
// stream or on the first error; check Err afterwards.
func (fr *FrameReader) Next() bool {
	if fr.done {
		return false
	}

	tx, err := readFrame(fr.reader, &fr.body)
	if err != nil {
		fr.done = true
		if err == io.EOF {
			return false
		}
		if IsDataError(err) {
			err = fmt.Errorf("frame at offset %d: %w", fr.offset, err)
		}
		fr.err = err
		return false
	}

	fr.record = tx
	fr.offset += int64(HeaderSize + fr.body.Len())
	return true
}

// Record returns the frame decoded by the last successful Next
func (fr *FrameReader) Record() record.Transaction {
	return fr.record
}

// Err returns the error that stopped iteration, or nil at a clean end of stream
func (fr *FrameReader) Err() error {
	return fr.err
}

// Offset returns the byte offset of the next frame
func (fr *FrameReader) Offset() int64 {
	return fr.offset
}

// FrameWriter appends frames to a buffered sink
type FrameWriter struct {
	writer  *bufio.Writer
	scratch []byte
	offset  int64
}

// NewFrameWriter creates a frame writer over w. Callers must Flush.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{writer: bufio.NewWriter(w)}
}

// Write encodes tx as one frame
func (fw *FrameWriter) Write(tx record.Transaction) error {
	frame, err := AppendFrame(fw.scratch[:0], tx)
	if err != nil {
		return err
	}
	fw.scratch = frame

	n, err := fw.writer.Write(frame)
	fw.offset += int64(n)
	return err
}

// Flush writes any buffered frames to the underlying writer
func (fw *FrameWriter) Flush() error {
	return fw.writer.Flush()
}

// Offset returns the number of bytes written so far
func (fw *FrameWriter) Offset() int64 {
	return fw.offset
}
