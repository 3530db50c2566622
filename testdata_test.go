package slpz

import "encoding/binary"

// buildEventSizesBlock encodes an Event Payloads event (cmd 0x35)
// declaring the given command-to-payload-size table, in the same
// 'cmd, p, (cmd, size)*' layout ParseSlp expects.
func buildEventSizesBlock(sizes map[byte]uint16) []byte {
	p := 1 + 3*len(sizes)
	block := make([]byte, 1+p)
	block[0] = evtPayloadsCmd
	block[1] = byte(p)

	pos := 2
	for cmd, size := range sizes {
		block[pos] = cmd
		binary.BigEndian.PutUint16(block[pos+1:pos+3], size)
		pos += 3
	}

	return block
}

// gameStartPayloadLen is large enough to cover every fixed offset
// decodeGameStart reads, across all four player slots.
const gameStartPayloadLen = 0x2C0

// buildGameStartPayload returns a zeroed Game Start payload with the
// version and per-player PlayerType bytes set.
func buildGameStartPayload(major, minor, patch byte, playerTypes [4]byte) []byte {
	payload := make([]byte, gameStartPayloadLen)
	payload[0], payload[1], payload[2] = major, minor, patch
	for i, pt := range playerTypes {
		payload[0x65+0x24*i] = pt
	}
	payload[0x1A3] = 0x8 // MajorScene: versus mode
	return payload
}

func bePut32(b []byte, v uint32) {
	binary.BigEndian.PutUint32(b, v)
}

func buildPreFrameUpdate(frameNumber int32, playerIndex uint8) []byte {
	payload := make([]byte, 0x3F)
	bePut32(payload[0:4], uint32(frameNumber))
	payload[4] = playerIndex
	return payload
}

func buildPostFrameUpdate(frameNumber int32, playerIndex uint8) []byte {
	payload := make([]byte, 0x50)
	bePut32(payload[0:4], uint32(frameNumber))
	payload[4] = playerIndex
	return payload
}

func buildFrameBookend(frameNumber, latestFinalized int32) []byte {
	payload := make([]byte, 8)
	bePut32(payload[0:4], uint32(frameNumber))
	bePut32(payload[4:8], uint32(latestFinalized))
	return payload
}

func buildGameEnd(method byte, lrasInitiator byte) []byte {
	return []byte{method, lrasInitiator}
}

// testReplayMetadata is the metadata element of the synthetic replay: an
// empty UBJSON object.
var testReplayMetadata = []byte{'{', '}'}

// testReplay is a complete, synthetic single-frame SLP file: one player
// acting for frame -123, immediately finalized and ended.
type testReplay struct {
	bytes []byte
	sizes map[byte]uint16
}

func buildTestReplay() testReplay {
	gsPayload := buildGameStartPayload(3, 14, 0, [4]byte{0, byte(Empty), byte(Empty), byte(Empty)})

	sizes := map[byte]uint16{
		byte(GameStart):       uint16(len(gsPayload)),
		byte(PreFrameUpdate):  0x3F,
		byte(PostFrameUpdate): 0x50,
		byte(FrameBookend):    8,
		byte(GameEnd):         2,
	}

	// Melee's own frame numbering begins at -123 (the pre-match lead-in),
	// which this replay's single frame uses so ReplayAnalyzer's
	// finalization walk (which starts from -124) reaches it immediately.
	const firstFrame = -123

	var eventStream []byte
	eventStream = append(eventStream, byte(PreFrameUpdate))
	eventStream = append(eventStream, buildPreFrameUpdate(firstFrame, 0)...)
	eventStream = append(eventStream, byte(PostFrameUpdate))
	eventStream = append(eventStream, buildPostFrameUpdate(firstFrame, 0)...)
	eventStream = append(eventStream, byte(FrameBookend))
	eventStream = append(eventStream, buildFrameBookend(firstFrame, firstFrame)...)
	eventStream = append(eventStream, byte(GameEnd))
	eventStream = append(eventStream, buildGameEnd(2, 0xFF)...)

	eventSizesBlock := buildEventSizesBlock(sizes)

	var raw []byte
	raw = append(raw, eventSizesBlock...)
	raw = append(raw, byte(GameStart))
	raw = append(raw, gsPayload...)
	raw = append(raw, eventStream...)

	var out []byte
	out = append(out, slpRawMagic...)
	lenField := make([]byte, 4)
	bePut32(lenField, uint32(len(raw)))
	out = append(out, lenField...)
	out = append(out, raw...)
	out = append(out, slpMetadataKey...)
	out = append(out, testReplayMetadata...)
	out = append(out, '}')

	return testReplay{bytes: out, sizes: sizes}
}
