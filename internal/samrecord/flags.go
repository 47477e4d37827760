// Package samrecord formats mapped reads into SAM-style tab-separated
// records: flag bits, CIGAR strings, and the NM/CV tags the mapper emits,
// including the dovetail/overlap CIGAR and template-length adjustment
// short PE fragments need.
package samrecord

// Flag bits, the subset of the SAM specification this package defines.
// FormatSE and FormatPE set only paired, proper-pair, reverse, mate-reverse
// and first/second-in-pair; the others are never set by this package.
const (
	FlagPaired        = 0x1
	FlagProperPair    = 0x2
	FlagUnmapped      = 0x4
	FlagMateUnmapped  = 0x8
	FlagReverse       = 0x10
	FlagMateReverse   = 0x20
	FlagFirstInPair   = 0x40
	FlagSecondInPair  = 0x80
	FlagSecondary     = 0x100
)

// MAPQPlaceholder is the literal mapping-quality value the mandated output
// record uses; the mapper's real score-gap MAPQ is only ever exposed to
// callers that ask for it directly (internal/mapping's SeResult.MAPQ),
// never written into this field.
const MAPQPlaceholder = 255
