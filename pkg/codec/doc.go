// Package codec reads and writes bank transaction record sets in three
// physical encodings.
//
// Every encoding implements the same [Codec] interface over the shared
// [record.Set] type, so converting between encodings is a decode with one
// codec followed by an encode with another (see [Convert]).
//
// # Binary Format
//
// A binary stream is a sequence of self-contained frames, one per record.
// All integers are big-endian:
//
//	[Magic(4)][RecordSize(4)][TxID(8)][TxType(1)][FromUserID(8)][ToUserID(8)]
//	[Amount(8)][Timestamp(8)][Status(1)][DescLen(4)][Description(DescLen)]
//
// Fields:
//   - Magic: constant 0x5950424E ("YPBN")
//   - RecordSize: byte length of everything after the header, 46 + DescLen
//   - TxType: 0=DEPOSIT, 1=TRANSFER, 2=WITHDRAWAL
//   - Status: 0=SUCCESS, 1=FAILURE, 2=PENDING
//   - Description: raw UTF-8 bytes, written and read without quoting
//
// A stream that ends exactly on a frame boundary ends the record set. A
// stream that ends inside a frame is a truncation error.
//
// # Delimited-Text Format
//
// A header row naming the eight fields, then one comma-separated row per
// record:
//
//	TX_ID,TX_TYPE,FROM_USER_ID,TO_USER_ID,AMOUNT,TIMESTAMP,STATUS,DESCRIPTION
//	1001,DEPOSIT,0,42,10000,1633036860000,SUCCESS,"Record number 1"
//
// The description is always quoted; quotes inside it are doubled. Line
// breaks inside a description are read back as "\n", so "\r\n" is
// normalized.
//
// # Block-Text Format
//
// One block of "KEY: value" lines per record, blocks separated by blank
// lines. Lines starting with "#" are comments:
//
//	# Record 1 DEPOSIT
//	TX_ID: 1001
//	TX_TYPE: DEPOSIT
//	FROM_USER_ID: 0
//	TO_USER_ID: 42
//	AMOUNT: 10000
//	TIMESTAMP: 1633036860000
//	STATUS: SUCCESS
//	DESCRIPTION: "Record number 1"
//
// Every key must appear exactly once per block. Double quotes are removed
// from values on read, so descriptions containing quotes or line breaks are
// not preserved by this format.
//
// # Error Handling
//
// Malformed input wraps one of the package's sentinel errors (ErrInvalidMagic,
// ErrTruncated, ErrMissingField, ...), all of which are matched by
// [IsDataError]. Failures of the underlying reader or writer are returned
// unchanged. A failed decode never returns a partial record set.
//
// # Thread Safety
//
// Codec values are stateless and safe for concurrent use. FrameReader and
// FrameWriter are not.
package codec
