// Package ihex encodes and parses Intel-HEX records.
//
// # Record Format
//
// Every record is one line of uppercase hex characters after a ':' start code:
//
//	:[LEN(2)][ADDR(4)][TYPE(2)][DATA(2*LEN)][CHECKSUM(2)]
//
// The checksum is the two's complement of the sum of all preceding record
// bytes. Three record types are produced:
//   - 00 data
//   - 01 end of file
//   - 04 extended linear address (upper 16 bits of the address)
//
// # Usage
//
// Encode a script for an execute upload:
//
//	text := ihex.EncodeString("print('hello');\n")
//	// ":1000000070726974...\n:00000001FF\n"
//
// Verify what was produced:
//
//	data, err := ihex.DecodeString(text)
//
// # Error Handling
//
// Parse returns detailed errors for invalid input:
//   - Missing start code
//   - Length mismatches
//   - Checksum mismatches
//   - Invalid hex encoding
//   - Missing end of file record
//
// All errors include the offending line number.
package ihex
