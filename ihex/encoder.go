package ihex

import "strings"

// Constants for Intel-HEX encoding.
const (
	// StartCode begins every record
	StartCode = ':'

	// RecordOverhead is the byte count of length, address, type and checksum
	RecordOverhead = 5

	// DefaultRecordSize is the number of data bytes per data record
	DefaultRecordSize = 16

	// MaxRecordSize is the largest payload a record can describe
	MaxRecordSize = 255

	segmentSize = 1 << 16
)

// Encode converts data into Intel-HEX text loaded from address 0, using
// DefaultRecordSize data records and a terminating EOF record. Records are
// separated and terminated by '\n'. The output is deterministic.
//
// Example:
//
//	ihex.Encode([]byte{0x01, 0x02, 0x03})
//	// ":03000000010203F7\n:00000001FF\n"
func Encode(data []byte) string {
	return Format(EncodeRecords(data, DefaultRecordSize))
}

// EncodeString converts source text into Intel-HEX text. It is the codec the
// transfer sequencer uses for execute uploads.
func EncodeString(text string) string {
	return Encode([]byte(text))
}

// EncodeRecords splits data into records of at most recordSize bytes.
// A record never crosses a 64 KiB boundary; an extended linear address
// record precedes the first data record of every segment above the first.
// An out-of-range recordSize falls back to DefaultRecordSize.
func EncodeRecords(data []byte, recordSize int) []Record {
	if recordSize <= 0 || recordSize > MaxRecordSize {
		recordSize = DefaultRecordSize
	}

	records := make([]Record, 0, len(data)/recordSize+2)
	for offset := 0; offset < len(data); {
		if offset > 0 && offset%segmentSize == 0 {
			upper := uint16(offset >> 16)
			records = append(records, newRecord(TypeExtendedLinearAddress, 0,
				[]byte{byte(upper >> 8), byte(upper)}))
		}

		n := recordSize
		if n > len(data)-offset {
			n = len(data) - offset
		}
		// Stop at the segment boundary so the next record gets a new upper address
		if toBoundary := segmentSize - offset%segmentSize; n > toBoundary {
			n = toBoundary
		}

		chunk := make([]byte, n)
		copy(chunk, data[offset:offset+n])
		records = append(records, newRecord(TypeData, uint16(offset), chunk))
		offset += n
	}

	return append(records, newRecord(TypeEOF, 0, nil))
}

// Format renders records one per line, each terminated by '\n'.
func Format(records []Record) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(r.String())
		b.WriteByte('\n')
	}
	return b.String()
}
