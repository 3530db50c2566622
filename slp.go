package slpz

import "encoding/binary"

// slpRawMagic is the fixed 11-byte UBJSON prelude that opens every SLP
// file: '{' 'U' 0x03 "raw" '[' '$' 'U' '#' 'l', i.e. an object with a
// "raw" key whose value is a strongly-typed (uint8, int32-counted) array.
// Because the array is strongly typed its length is never implicit; it is
// the 4-byte big-endian count that immediately follows this magic.
var slpRawMagic = []byte{0x7B, 0x55, 0x03, 0x72, 0x61, 0x77, 0x5B, 0x24, 0x55, 0x23, 0x6C}

// slpPreambleLen is len(slpRawMagic) + 4 (the big-endian raw-region length).
const slpPreambleLen = 15

// slpMetadataKeyLen is the length, in bytes, of the UBJSON-encoded
// "metadata" object key that separates the raw event region from the
// metadata element: 'U' 0x08 "metadata" (no trailing type marker, since the
// value that follows is itself an object and so is self-introducing with
// '{').
const slpMetadataKeyLen = 10

// evtPayloadsCmd and gameStartCmd are the two command bytes every SLP file
// must begin with, per the Slippi wire format
// (https://github.com/project-slippi/slippi-wiki/blob/master/SPEC.md). See
// Command in events.go for the full, exported command enumeration used by
// the replay analyzer.
const (
	evtPayloadsCmd byte = 0x35
	gameStartCmd   byte = 0x36
)

// SizeTable maps a command byte to its declared payload length. A length of
// 0 means the command never occurs in the event stream.
type SizeTable [256]uint16

// ParsedSlp holds the four byte ranges an SLP file decomposes into, plus
// the decoded size table.
type ParsedSlp struct {
	EventSizesBytes  []byte
	GameStartBytes   []byte
	EventStreamBytes []byte
	MetadataBytes    []byte
	Sizes            SizeTable
}

// rawRegionLen is the length, in bytes, of EventSizesBytes+GameStartBytes+
// EventStreamBytes — the value stored in the SLP preamble's length field.
func (p *ParsedSlp) rawRegionLen() int {
	return len(p.EventSizesBytes) + len(p.GameStartBytes) + len(p.EventStreamBytes)
}

// ParseSlp parses a complete in-memory SLP file into its four sections and
// decoded size table.
func ParseSlp(data []byte) (*ParsedSlp, error) {
	if len(data) < slpPreambleLen {
		return nil, newErr(MalformedSlp, "file is %d bytes, shorter than the %d-byte preamble", len(data), slpPreambleLen)
	}

	for i, b := range slpRawMagic {
		if data[i] != b {
			return nil, newErr(MalformedSlp, "invalid preamble at byte %d: got 0x%02X", i, data[i])
		}
	}
	rawLen := int(binary.BigEndian.Uint32(data[len(slpRawMagic):slpPreambleLen]))

	rawStart := slpPreambleLen
	rawEnd := rawStart + rawLen
	if rawEnd < rawStart || rawEnd+slpMetadataKeyLen > len(data) {
		return nil, newErr(MalformedSlp, "raw region length %d overruns the file", rawLen)
	}

	sizes, eventSizesBytes, err := parseEventSizes(data[rawStart:rawEnd])
	if err != nil {
		return nil, err
	}

	gsLen := int(sizes[gameStartCmd])
	gsStart := rawStart + len(eventSizesBytes)
	gsEnd := gsStart + 1 + gsLen
	if gsEnd > rawEnd {
		return nil, newErr(MalformedSlp, "game start event overruns the raw region")
	}
	if data[gsStart] != gameStartCmd {
		return nil, newErr(MalformedSlp, "expected game start event (0x%02X), got 0x%02X", gameStartCmd, data[gsStart])
	}
	gameStartBytes := data[gsStart:gsEnd]

	eventStreamBytes := data[gsEnd:rawEnd]
	if err := validateEventStream(eventStreamBytes, &sizes); err != nil {
		return nil, err
	}

	metaKeyStart := rawEnd
	metaKeyEnd := metaKeyStart + slpMetadataKeyLen
	metadataStart := metaKeyEnd
	metadataEnd := len(data) - 1 // final byte is the outer object's closing brace
	if metadataEnd <= metadataStart {
		return nil, newErr(MalformedSlp, "file has no metadata element")
	}

	return &ParsedSlp{
		EventSizesBytes:  eventSizesBytes,
		GameStartBytes:   gameStartBytes,
		EventStreamBytes: eventStreamBytes,
		MetadataBytes:    data[metadataStart:metadataEnd],
		Sizes:            sizes,
	}, nil
}

// parseEventSizes decodes the Event Payloads event at the front of buf,
// returning the decoded size table and the byte range the event itself
// occupies. This is shared between parsing a fresh SLP file and
// re-decoding the Event Sizes section stored verbatim in an SLPZ
// container.
func parseEventSizes(buf []byte) (SizeTable, []byte, error) {
	var sizes SizeTable

	if len(buf) < 2 {
		return sizes, nil, newErr(MalformedSlp, "file ends before the event payloads event")
	}
	if buf[0] != evtPayloadsCmd {
		return sizes, nil, newErr(MalformedSlp, "expected event payloads event (0x%02X), got 0x%02X", evtPayloadsCmd, buf[0])
	}

	p := int(buf[1])
	if p < 2 {
		return sizes, nil, newErr(MalformedSlp, "event payloads size %d is too small to hold any triples", p)
	}
	if 1+p > len(buf) {
		return sizes, nil, newErr(MalformedSlp, "event payloads event overruns the file")
	}

	sizes[evtPayloadsCmd] = uint16(p)

	for pos := 1; pos < p; pos += 3 {
		if pos+3 > p {
			return sizes, nil, newErr(MalformedSlp, "event payloads triples do not evenly divide the declared size %d", p)
		}
		cmd := buf[1+pos]
		size := binary.BigEndian.Uint16(buf[1+pos+1 : 1+pos+3])
		sizes[cmd] = size
	}

	return sizes, buf[:1+p], nil
}

// validateEventStream walks the event stream once, verifying every command
// byte encountered has a declared, non-zero payload size.
func validateEventStream(stream []byte, sizes *SizeTable) error {
	pos := 0
	for pos < len(stream) {
		cmd := stream[pos]
		size := sizes[cmd]
		if size == 0 {
			return newErr(MalformedSlp, "undeclared command 0x%02X at offset %d of the event stream", cmd, pos)
		}
		pos += 1 + int(size)
		if pos > len(stream) {
			return newErr(MalformedSlp, "event with command 0x%02X at end of stream is truncated", cmd)
		}
	}
	return nil
}
