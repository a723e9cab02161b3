package ihex

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Record types used by the encoder.
const (
	// TypeData carries up to 255 data bytes at a 16-bit offset
	TypeData byte = 0x00

	// TypeEOF marks the end of the file
	TypeEOF byte = 0x01

	// TypeExtendedLinearAddress sets the upper 16 bits of the address for
	// the data records that follow
	TypeExtendedLinearAddress byte = 0x04
)

// Record is one Intel-HEX line.
type Record struct {
	// Type is the record type (TypeData, TypeEOF, ...)
	Type byte

	// Address is the 16-bit load offset
	Address uint16

	// Data is the record payload
	Data []byte

	// Checksum is the two's complement of the sum of all other record bytes
	Checksum byte
}

// String encodes the record as an uppercase ":LLAAAATT[DD...]CC" line
// without a line terminator.
func (r Record) String() string {
	var b strings.Builder
	b.Grow(1 + 2*(RecordOverhead+len(r.Data)))
	b.WriteByte(StartCode)
	b.WriteString(strings.ToUpper(hex.EncodeToString(r.header())))
	b.WriteString(strings.ToUpper(hex.EncodeToString(r.Data)))
	fmt.Fprintf(&b, "%02X", r.Checksum)
	return b.String()
}

func (r Record) header() []byte {
	return []byte{byte(len(r.Data)), byte(r.Address >> 8), byte(r.Address), r.Type}
}

// newRecord builds a record and computes its checksum.
func newRecord(typ byte, address uint16, data []byte) Record {
	r := Record{Type: typ, Address: address, Data: data}
	r.Checksum = calculateChecksum(append(r.header(), data...))
	return r
}

// calculateChecksum computes the 8-bit record checksum.
// Uses basic summation with 2's complement.
func calculateChecksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return ^sum + 1 // 2's complement
}
