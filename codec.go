package slpz

// Encode transcodes a complete SLP file into the SLPZ container format.
// Decode(Encode(x)) reproduces x byte-exactly regardless of opts.Level.
func Encode(slpBytes []byte, opts EncodeOptions) ([]byte, error) {
	parsed, err := ParseSlp(slpBytes)
	if err != nil {
		return nil, err
	}

	reordered, err := Reorder(parsed.EventStreamBytes, &parsed.Sizes)
	if err != nil {
		return nil, err
	}

	compressedEvents, err := compress(reordered, opts.Level)
	if err != nil {
		return nil, err
	}

	offEventSizes := uint32(headerSize)
	offGameStart := offEventSizes + uint32(len(parsed.EventSizesBytes))
	offMetadata := offGameStart + uint32(len(parsed.GameStartBytes))
	offCompressedEvents := offMetadata + uint32(len(parsed.MetadataBytes))

	h := header{
		version:              currentVersion,
		offEventSizes:        offEventSizes,
		offGameStart:         offGameStart,
		offMetadata:          offMetadata,
		offCompressedEvents:  offCompressedEvents,
		uncompressedEventLen: uint32(len(reordered)),
	}

	out := make([]byte, 0, int(offCompressedEvents)+len(compressedEvents))
	out = append(out, h.bytes()...)
	out = append(out, parsed.EventSizesBytes...)
	out = append(out, parsed.GameStartBytes...)
	out = append(out, parsed.MetadataBytes...)
	out = append(out, compressedEvents...)

	return out, nil
}

// Decode transcodes an SLPZ container back into the original SLP file.
func Decode(slpzBytes []byte) ([]byte, error) {
	h, err := parseHeader(slpzBytes)
	if err != nil {
		return nil, err
	}
	secs := h.slice(slpzBytes)

	eventStream, err := decodeEvents(secs, h)
	if err != nil {
		return nil, err
	}

	return assembleSlp(secs, eventStream), nil
}

// decodeEvents decompresses the Compressed Events section and unreorders it
// back into the original event stream bytes.
func decodeEvents(secs sections, h header) ([]byte, error) {
	sizes, eventSizesBytes, err := parseEventSizes(secs.eventSizes)
	if err != nil {
		return nil, err
	}
	if len(eventSizesBytes) != len(secs.eventSizes) {
		return nil, newErr(MalformedSlpz, "event sizes section has %d trailing bytes after the declared event payloads event", len(secs.eventSizes)-len(eventSizesBytes))
	}

	reordered, err := decompress(secs.compressedEvents, int(h.uncompressedEventLen))
	if err != nil {
		return nil, err
	}

	return Unreorder(reordered, &sizes)
}

// assembleSlp reconstructs the exact bytes of the original SLP file from its
// clear sections and the unreordered event stream. The outer UBJSON
// preamble and the metadata-key separator are fully determined by the raw
// region's length, so nothing about the framing needs to be stored.
func assembleSlp(secs sections, eventStream []byte) []byte {
	rawLen := len(secs.eventSizes) + len(secs.gameStart) + len(eventStream)

	out := make([]byte, 0, slpPreambleLen+rawLen+slpMetadataKeyLen+len(secs.metadata)+1)
	out = append(out, slpRawMagic...)
	out = appendUint32BE(out, uint32(rawLen))
	out = append(out, secs.eventSizes...)
	out = append(out, secs.gameStart...)
	out = append(out, eventStream...)
	out = append(out, slpMetadataKey...)
	out = append(out, secs.metadata...)
	out = append(out, '}')

	return out
}

func appendUint32BE(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// slpMetadataKey is the 10-byte UBJSON-encoded "metadata" object key: 'U'
// 0x08 "metadata".
var slpMetadataKey = []byte{0x55, 0x08, 'm', 'e', 't', 'a', 'd', 'a', 't', 'a'}
