package slpz

// EncodeOptions configures Encode. The zero value is usable: its Level of 0
// is clamped to LevelFastest. DefaultEncodeOptions returns the documented
// default.
type EncodeOptions struct {
	// Level is the zstd compression level applied to the reordered event
	// stream. See Level for the accepted range.
	Level Level
}

// DefaultEncodeOptions returns the encoder's documented default
// configuration. The default level is fixed across versions of slpz so
// behavior is predictable, but byte-for-byte equality of SLPZ files
// produced at the default level across versions is coincidental, not
// guaranteed — decode works regardless of the level an encoder chose.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Level: LevelDefault}
}
