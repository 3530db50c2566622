package slpz

import "encoding/binary"

// headerSize is the fixed size of the SLPZ header in bytes.
const headerSize = 24

// currentVersion is the only SLPZ version this codec understands.
const currentVersion uint32 = 0

// header is the 24-byte, little-endian SLPZ container header.
type header struct {
	version              uint32
	offEventSizes        uint32
	offGameStart         uint32
	offMetadata          uint32
	offCompressedEvents  uint32
	uncompressedEventLen uint32
}

func (h header) bytes() []byte {
	b := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(b[0:4], h.version)
	binary.LittleEndian.PutUint32(b[4:8], h.offEventSizes)
	binary.LittleEndian.PutUint32(b[8:12], h.offGameStart)
	binary.LittleEndian.PutUint32(b[12:16], h.offMetadata)
	binary.LittleEndian.PutUint32(b[16:20], h.offCompressedEvents)
	binary.LittleEndian.PutUint32(b[20:24], h.uncompressedEventLen)
	return b
}

// parseHeader reads and validates the 24-byte SLPZ header from the front of
// data, checking its section offsets against the full length of data.
func parseHeader(data []byte) (header, error) {
	if len(data) < headerSize {
		return header{}, newErr(MalformedSlpz, "file is %d bytes, shorter than the %d-byte header", len(data), headerSize)
	}

	h := header{
		version:              binary.LittleEndian.Uint32(data[0:4]),
		offEventSizes:        binary.LittleEndian.Uint32(data[4:8]),
		offGameStart:         binary.LittleEndian.Uint32(data[8:12]),
		offMetadata:          binary.LittleEndian.Uint32(data[12:16]),
		offCompressedEvents:  binary.LittleEndian.Uint32(data[16:20]),
		uncompressedEventLen: binary.LittleEndian.Uint32(data[20:24]),
	}

	if h.version != currentVersion {
		return header{}, newErr(MalformedSlpz, "unsupported version %d, only version %d is known", h.version, currentVersion)
	}

	fileLen := uint32(len(data))
	if !(headerSize <= h.offEventSizes &&
		h.offEventSizes < h.offGameStart &&
		h.offGameStart < h.offMetadata &&
		h.offMetadata < h.offCompressedEvents &&
		h.offCompressedEvents <= fileLen) {
		return header{}, newErr(MalformedSlpz, "section offsets %d,%d,%d,%d are not strictly increasing within a %d-byte file", h.offEventSizes, h.offGameStart, h.offMetadata, h.offCompressedEvents, fileLen)
	}

	return h, nil
}

// sections are the four contiguous payload slices described by a header,
// sliced out of the container's backing buffer.
type sections struct {
	eventSizes        []byte
	gameStart         []byte
	metadata          []byte
	compressedEvents  []byte
}

func (h header) slice(data []byte) sections {
	return sections{
		eventSizes:       data[h.offEventSizes:h.offGameStart],
		gameStart:        data[h.offGameStart:h.offMetadata],
		metadata:         data[h.offMetadata:h.offCompressedEvents],
		compressedEvents: data[h.offCompressedEvents:],
	}
}
