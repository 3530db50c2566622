package slpz

import (
	"bytes"

	"github.com/jmank88/ubjson"
)

// Metadata is the structured form of an SLP/SLPZ file's metadata element.
// It is decoded from the verbatim metadata bytes purely for callers that
// want structured access (e.g. a file browser indexing player names); the
// codec itself never needs to understand metadata content, and treats it
// as an opaque, verbatim-preserved blob.
type Metadata struct {
	StartAt     string                    `ubjson:"startAt"`
	LastFrame   int32                     `ubjson:"lastFrame"`
	Players     map[string]PlayerMetadata `ubjson:"players"`
	PlayedOn    string                    `ubjson:"playedOn"`
	ConsoleNick string                    `ubjson:"consoleNick"`
}

// PlayerMetadata contains metadata about a single player.
type PlayerMetadata struct {
	Characters map[string]int32 `ubjson:"characters"`
	Names      Names            `ubjson:"names"`
}

// Names contains the names recorded for a player.
type Names struct {
	Netplay string `ubjson:"netplay"`
	Code    string `ubjson:"code"`
}

// DecodeMetadata decodes the verbatim metadata bytes of a parsed SLP or
// SLPZ file into a structured Metadata value. An empty metadataBytes slice
// decodes to (nil, nil).
func DecodeMetadata(metadataBytes []byte) (*Metadata, error) {
	if len(metadataBytes) == 0 {
		return nil, nil
	}

	m := &Metadata{}
	decoder := ubjson.NewDecoder(bytes.NewReader(metadataBytes))
	if err := decoder.Decode(m); err != nil {
		return nil, newErr(MalformedSlp, "failed to decode metadata element: %v", err)
	}

	return m, nil
}
