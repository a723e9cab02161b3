package ihex

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// MinimumRecordLength is the shortest record in characters: ':' plus
// length, address, type and checksum.
const MinimumRecordLength = 1 + 2*RecordOverhead

// Parse parses Intel-HEX text. Blank lines are skipped; '\r' line endings
// are accepted. Parsing stops at the EOF record.
//
// Example:
//
//	records, err := ihex.Parse(strings.NewReader(text))
func Parse(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)

	var records []Record
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")

		// Skip empty lines
		if line == "" {
			continue
		}

		rec, err := ParseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		records = append(records, rec)
		if rec.Type == TypeEOF {
			return records, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return nil, fmt.Errorf("missing end of file record")
}

// ParseRecord parses a single ":LLAAAATT[DD...]CC" record and verifies its
// length and checksum.
func ParseRecord(line string) (Record, error) {
	if len(line) == 0 || line[0] != StartCode {
		return Record{}, fmt.Errorf("record must start with '%c'", StartCode)
	}
	if len(line) < MinimumRecordLength {
		return Record{}, fmt.Errorf("record too short: got %d characters, minimum is %d", len(line), MinimumRecordLength)
	}

	raw, err := hex.DecodeString(line[1:])
	if err != nil {
		return Record{}, fmt.Errorf("invalid hex data: %w", err)
	}

	dataLen := int(raw[0])
	expectedLen := RecordOverhead + dataLen
	if len(raw) != expectedLen {
		return Record{}, fmt.Errorf("data length mismatch: got %d bytes, expected %d (overhead=%d + data=%d)",
			len(raw), expectedLen, RecordOverhead, dataLen)
	}

	checksum := raw[len(raw)-1]
	if calculated := calculateChecksum(raw[:len(raw)-1]); checksum != calculated {
		return Record{}, fmt.Errorf("checksum mismatch: got 0x%02X, expected 0x%02X", checksum, calculated)
	}

	rec := Record{
		Type:     raw[3],
		Address:  uint16(raw[1])<<8 | uint16(raw[2]),
		Data:     make([]byte, dataLen),
		Checksum: checksum,
	}
	copy(rec.Data, raw[4:4+dataLen])

	return rec, nil
}

// Decode reassembles the payload of records produced by EncodeRecords.
// Data records must be contiguous from address 0.
func Decode(records []Record) ([]byte, error) {
	var (
		out   []byte
		upper uint32
	)
	for i, rec := range records {
		switch rec.Type {
		case TypeData:
			addr := upper | uint32(rec.Address)
			if addr != uint32(len(out)) {
				return nil, fmt.Errorf("record %d: non-contiguous address 0x%08X, expected 0x%08X", i, addr, len(out))
			}
			out = append(out, rec.Data...)
		case TypeExtendedLinearAddress:
			if len(rec.Data) != 2 {
				return nil, fmt.Errorf("record %d: extended linear address needs 2 bytes, got %d", i, len(rec.Data))
			}
			upper = (uint32(rec.Data[0])<<8 | uint32(rec.Data[1])) << 16
		case TypeEOF:
			return out, nil
		default:
			return nil, fmt.Errorf("record %d: unsupported record type 0x%02X", i, rec.Type)
		}
	}
	return nil, fmt.Errorf("missing end of file record")
}

// DecodeString parses and decodes Intel-HEX text back into the original bytes.
func DecodeString(text string) ([]byte, error) {
	records, err := Parse(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	return Decode(records)
}
