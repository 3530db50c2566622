package slpz

import (
	"github.com/klauspost/compress/zstd"
)

// Level is a compression level accepted by the encoder, clamped into the
// range the underlying zstd encoder actually understands. Any int is a
// valid Level; out-of-range values are clamped rather than rejected, since
// decode must work regardless of which level an earlier encoder version
// chose.
type Level int

// Levels
const (
	LevelFastest Level = 1
	LevelDefault Level = 2
	LevelBetter  Level = 3
	LevelBest    Level = 4
)

func (l Level) clamp() zstd.EncoderLevel {
	switch {
	case l < LevelFastest:
		return zstd.EncoderLevel(LevelFastest)
	case l > LevelBest:
		return zstd.EncoderLevel(LevelBest)
	default:
		return zstd.EncoderLevel(l)
	}
}

// compress feeds src through a zstd encoder at the given level, producing a
// self-delimited frame.
func compress(src []byte, level Level) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level.clamp()))
	if err != nil {
		return nil, wrapErr(CompressorFailure, err, "failed to construct zstd encoder")
	}
	defer enc.Close()

	return enc.EncodeAll(src, make([]byte, 0, len(src))), nil
}

// decompress inflates src, which must be a zstd frame, and requires the
// result be exactly expectedLen bytes.
func decompress(src []byte, expectedLen int) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, wrapErr(CompressorFailure, err, "failed to construct zstd decoder")
	}
	defer dec.Close()

	out, err := dec.DecodeAll(src, make([]byte, 0, expectedLen))
	if err != nil {
		return nil, wrapErr(CorruptCompressedBlob, err, "zstd rejected the compressed events section")
	}
	if len(out) != expectedLen {
		return nil, newErr(CorruptCompressedBlob, "decompressed length %d does not match header's uncompressed length %d", len(out), expectedLen)
	}

	return out, nil
}
