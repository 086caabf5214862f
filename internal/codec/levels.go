package codec

// Level mapping policy (resolves the open question in the engine's design
// notes: level mapping across codecs is a free parameter, defined once
// here).
//
// The engine treats level as an ordinal preference from 1 (fastest, least
// compression) to 9 (slowest, most compression), not an exact native
// parameter. Each codec maps that ordinal onto its own native range:
//
//   - Gzip: native range is already 1..=9 (flate's BestSpeed..BestCompression);
//     the engine level is passed through unchanged.
//   - Zstd: native range is zstd.EncoderLevel's four tiers (1..=4). Levels
//     1..=2 map to SpeedFastest, 3..=5 to SpeedDefault, 6..=7 to
//     SpeedBetterCompression, 8..=9 to SpeedBestCompression.
//   - Brotli: native range is 0..=11. level*11/9 rounds to the nearest
//     native step, clamped to [0, 11].
//   - Xz: the ulikunitz/xz writer has no direct level knob; the engine
//     maps level onto the writer's dictionary capacity, trading memory for
//     ratio the same way higher xz presets do (1MiB at level 1, up to
//     64MiB at level 9).
//   - Store: level is ignored.

// brotliLevel maps an engine level (1..=9) onto brotli's 0..=11 range.
func brotliLevel(level int) int {
	mapped := (level*11 + 4) / 9
	if mapped < 0 {
		return 0
	}
	if mapped > 11 {
		return 11
	}
	return mapped
}

// xzDictCap maps an engine level (1..=9) onto a dictionary capacity in bytes.
func xzDictCap(level int) int {
	const mib = 1 << 20
	switch {
	case level <= 1:
		return 1 * mib
	case level <= 3:
		return 4 * mib
	case level <= 5:
		return 16 * mib
	case level <= 7:
		return 32 * mib
	default:
		return 64 * mib
	}
}
