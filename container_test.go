package slpz

import "testing"

func TestHeaderRoundTrip(t *testing.T) {
	h := header{
		version:              currentVersion,
		offEventSizes:        24,
		offGameStart:         40,
		offMetadata:          60,
		offCompressedEvents:  80,
		uncompressedEventLen: 1000,
	}

	got, err := parseHeader(h.bytes())
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if got != h {
		t.Fatalf("parseHeader round trip: got %+v, want %+v", got, h)
	}
}

func TestParseHeaderRejectsShortBuffer(t *testing.T) {
	_, err := parseHeader(make([]byte, headerSize-1))
	if kind, ok := KindOf(err); !ok || kind != MalformedSlpz {
		t.Fatalf("expected MalformedSlpz, got %v", err)
	}
}

func TestParseHeaderRejectsUnknownVersion(t *testing.T) {
	h := header{version: currentVersion + 1, offEventSizes: 24, offGameStart: 40, offMetadata: 60, offCompressedEvents: 80}
	_, err := parseHeader(h.bytes())
	if kind, ok := KindOf(err); !ok || kind != MalformedSlpz {
		t.Fatalf("expected MalformedSlpz, got %v", err)
	}
}

func TestParseHeaderRejectsNonMonotonicOffsets(t *testing.T) {
	h := header{version: currentVersion, offEventSizes: 24, offGameStart: 24, offMetadata: 60, offCompressedEvents: 80}
	_, err := parseHeader(h.bytes())
	if kind, ok := KindOf(err); !ok || kind != MalformedSlpz {
		t.Fatalf("expected MalformedSlpz for equal offsets, got %v", err)
	}
}

func TestHeaderSlice(t *testing.T) {
	h := header{
		version:              currentVersion,
		offEventSizes:        headerSize,
		offGameStart:         headerSize + 3,
		offMetadata:          headerSize + 3 + 5,
		offCompressedEvents:  headerSize + 3 + 5 + 7,
		uncompressedEventLen: 0,
	}

	data := make([]byte, headerSize+3+5+7+11)
	secs := h.slice(data)

	if len(secs.eventSizes) != 3 {
		t.Errorf("eventSizes: got %d bytes, want 3", len(secs.eventSizes))
	}
	if len(secs.gameStart) != 5 {
		t.Errorf("gameStart: got %d bytes, want 5", len(secs.gameStart))
	}
	if len(secs.metadata) != 7 {
		t.Errorf("metadata: got %d bytes, want 7", len(secs.metadata))
	}
	if len(secs.compressedEvents) != 11 {
		t.Errorf("compressedEvents: got %d bytes, want 11", len(secs.compressedEvents))
	}
}
