package codec

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/ypbank/pkg/record"
)

func encodeFrame(t *testing.T, tx record.Transaction) []byte {
	t.Helper()
	frame, err := AppendFrame(nil, tx)
	require.NoError(t, err)
	return frame
}

func TestAppendFrame_Layout(t *testing.T) {
	tx := record.Transaction{
		TxID:        0x0102030405060708,
		TxType:      record.Withdrawal,
		FromUserID:  1,
		ToUserID:    2,
		Amount:      3,
		Timestamp:   4,
		Status:      record.Pending,
		Description: "hi",
	}

	frame := encodeFrame(t, tx)
	require.Len(t, frame, HeaderSize+FixedBodySize+2)

	assert.Equal(t, []byte("YPBN"), frame[0:4])
	assert.Equal(t, uint32(FixedBodySize+2), binary.BigEndian.Uint32(frame[4:8]))
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, frame[8:16])
	assert.Equal(t, byte(2), frame[16], "tx_type code")
	assert.Equal(t, uint64(1), binary.BigEndian.Uint64(frame[17:25]))
	assert.Equal(t, uint64(2), binary.BigEndian.Uint64(frame[25:33]))
	assert.Equal(t, uint64(3), binary.BigEndian.Uint64(frame[33:41]))
	assert.Equal(t, uint64(4), binary.BigEndian.Uint64(frame[41:49]))
	assert.Equal(t, byte(2), frame[49], "status code")
	assert.Equal(t, uint32(2), binary.BigEndian.Uint32(frame[50:54]))
	assert.Equal(t, []byte("hi"), frame[54:])
}

func TestBinary_DescriptionIsRaw(t *testing.T) {
	tx := record.Transaction{TxID: 1, Description: `say "hello"` + "\nbye"}

	frame := encodeFrame(t, tx)
	assert.True(t, bytes.HasSuffix(frame, []byte(tx.Description)))

	got, err := DecodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, tx.Description, got.Description)
}

func TestBinary_DecodeErrors(t *testing.T) {
	valid := encodeFrame(t, record.Transaction{TxID: 42, Description: "hello"})

	patch := func(offset int, b ...byte) []byte {
		data := bytes.Clone(valid)
		copy(data[offset:], b)
		return data
	}

	testCases := []struct {
		name     string
		data     []byte
		sentinel error
		contains []string
	}{
		{
			name:     "bad magic",
			data:     patch(0, 0xDE, 0xAD, 0xBE, 0xEF),
			sentinel: ErrInvalidMagic,
			contains: []string{"0xDEADBEEF"},
		},
		{
			name:     "invalid tx_type",
			data:     patch(16, 3),
			sentinel: ErrInvalidEnum,
			contains: []string{"TX_TYPE", "3"},
		},
		{
			name:     "invalid status",
			data:     patch(49, 7),
			sentinel: ErrInvalidEnum,
			contains: []string{"STATUS", "7"},
		},
		{
			name:     "description longer than body",
			data:     patch(50, 0, 0, 0, 10),
			sentinel: ErrShortDescription,
			contains: []string{"need 10, have 5"},
		},
		{
			name:     "description shorter than body",
			data:     patch(50, 0, 0, 0, 2),
			sentinel: ErrLengthMismatch,
		},
		{
			name:     "truncated header",
			data:     valid[:5],
			sentinel: ErrTruncated,
			contains: []string{"have 5"},
		},
		{
			name:     "truncated body",
			data:     valid[:30],
			sentinel: ErrTruncated,
			contains: []string{"body needs 51 bytes, have 22"},
		},
		{
			name:     "record_size below fixed body",
			data:     patch(4, 0, 0, 0, 10),
			sentinel: ErrTruncated,
		},
		{
			name:     "invalid utf-8",
			data:     patch(54, 0xFF),
			sentinel: ErrInvalidText,
			contains: []string{"DESCRIPTION"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			set, err := Binary{}.Decode(bytes.NewReader(tc.data))
			require.Error(t, err)
			assert.Nil(t, set, "no partial result on error")
			assert.ErrorIs(t, err, tc.sentinel)
			assert.True(t, IsDataError(err))
			for _, s := range tc.contains {
				assert.Contains(t, err.Error(), s)
			}
		})
	}
}

func TestBinary_FailureAfterValidFramesDiscardsAll(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Binary{}.Encode(&buf, sampleSet()))
	buf.Write([]byte{0x59, 0x50})

	set, err := Binary{}.Decode(&buf)
	require.Error(t, err)
	assert.Nil(t, set)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestDecodeFrame(t *testing.T) {
	tx := sampleSet()[0]
	frame := encodeFrame(t, tx)

	got, err := DecodeFrame(frame)
	require.NoError(t, err)
	assert.Equal(t, tx, got)

	_, err = DecodeFrame(nil)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = DecodeFrame(append(bytes.Clone(frame), 0))
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFrameReader_Offsets(t *testing.T) {
	set := sampleSet()

	var buf bytes.Buffer
	fw := NewFrameWriter(&buf)
	var offsets []int64
	for _, tx := range set {
		offsets = append(offsets, fw.Offset())
		require.NoError(t, fw.Write(tx))
	}
	require.NoError(t, fw.Flush())
	assert.Equal(t, int64(buf.Len()), fw.Offset())

	fr := NewFrameReader(bytes.NewReader(buf.Bytes()))
	var got record.Set
	for i := 0; ; i++ {
		if i < len(offsets) {
			assert.Equal(t, offsets[i], fr.Offset(), "offset before frame %d", i)
		}
		if !fr.Next() {
			break
		}
		got = append(got, fr.Record())
	}
	require.NoError(t, fr.Err())
	assert.Equal(t, set, got)
	assert.Equal(t, int64(buf.Len()), fr.Offset())
	assert.False(t, fr.Next(), "exhausted reader stays exhausted")
}

func TestFrameReader_ErrorNamesOffset(t *testing.T) {
	first := encodeFrame(t, record.Transaction{TxID: 1, Description: "ok"})
	second := encodeFrame(t, record.Transaction{TxID: 2})
	copy(second, []byte{0, 0, 0, 0})

	fr := NewFrameReader(bytes.NewReader(append(first, second...)))
	require.True(t, fr.Next())
	require.False(t, fr.Next())

	err := fr.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidMagic)
	assert.True(t, strings.HasPrefix(err.Error(), "frame at offset 56:"), err.Error())
}

func TestAppendFrame_RejectsInvalidEnums(t *testing.T) {
	_, err := AppendFrame(nil, record.Transaction{Status: record.Status(3)})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidEnum)
	assert.Contains(t, err.Error(), "STATUS = 3")
}

func TestAppendFrame_RejectsInvalidUTF8(t *testing.T) {
	dst := []byte("keep")
	got, err := AppendFrame(dst, record.Transaction{TxID: 1, Description: "bad \xff byte"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidText)
	assert.Contains(t, err.Error(), "DESCRIPTION")
	assert.Equal(t, []byte("keep"), got, "dst is returned unchanged")
}
