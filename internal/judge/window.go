// Package judge implements the hit window policy and the judgement engine:
// classifying timing offsets into tiers and matching input events against
// unjudged chart notes.
package judge

import "github.com/vovakirdan/tui-mania/internal/core"

// Tier is a named judgement quality bucket.
type Tier int

const (
	Marvelous Tier = iota
	Perfect
	Great
	Good
	Bad
	// EarlyRelease is the penalty tier for letting go of a hold before its
	// tail window opens. It is produced by the release policy, never by
	// offset classification.
	EarlyRelease
	Miss
)

// TierCount is the number of tiers, for sizing count tables.
const TierCount = int(Miss) + 1

// String returns the display name of the tier.
func (t Tier) String() string {
	switch t {
	case Marvelous:
		return "Marvelous"
	case Perfect:
		return "Perfect"
	case Great:
		return "Great"
	case Good:
		return "Good"
	case Bad:
		return "Bad"
	case EarlyRelease:
		return "Early"
	case Miss:
		return "Miss"
	default:
		return "Unknown"
	}
}

// WindowMode selects how hit window boundaries are derived.
type WindowMode string

const (
	ModeOsuOD        WindowMode = "osu_od"
	ModeEtternaJudge WindowMode = "etterna_judge"
)

// Window holds the strictly nested tier boundaries. An absolute offset
// within Boundary(tier) earns that tier; offsets inside MissBoundary but
// outside Bad earn a Miss and consume the note; offsets beyond MissBoundary
// leave the note untouched (the input is a ghost tap).
type Window struct {
	marvelous core.SongTime
	perfect   core.SongTime
	great     core.SongTime
	good      core.SongTime
	bad       core.SongTime
	miss      core.SongTime
}

// FromMode derives a window from a mode selector and its severity value.
func FromMode(mode WindowMode, value float64) Window {
	switch mode {
	case ModeEtternaJudge:
		return FromEtternaJudge(int(value))
	default:
		return FromOsuOD(value)
	}
}

// FromOsuOD derives boundaries from an osu! Overall Difficulty value.
// The Marvelous window is fixed at 16ms (legacy stable behavior); the rest
// shrink linearly with OD.
func FromOsuOD(od float64) Window {
	return Window{
		marvelous: core.FromMillisF(16.0),
		perfect:   core.FromMillisF(64.0 - 3.0*od),
		great:     core.FromMillisF(97.0 - 3.0*od),
		good:      core.FromMillisF(127.0 - 3.0*od),
		bad:       core.FromMillisF(151.0 - 3.0*od),
		miss:      core.FromMillisF(188.0 - 3.0*od),
	}
}

// FromEtternaJudge derives boundaries from an Etterna judge level
// (J4 = standard). J9 uses a fixed 0.2 scale; the Bad window never drops
// below 180ms and the miss boundary is the standard 500ms.
func FromEtternaJudge(judge int) Window {
	scale := 1.0 - (float64(judge)-4.0)/6.0
	if judge == 9 {
		scale = 0.2
	}
	bad := 180.0 * scale
	if bad < 180.0 {
		bad = 180.0
	}
	return Window{
		marvelous: core.FromMillisF(22.5 * scale),
		perfect:   core.FromMillisF(45.0 * scale),
		great:     core.FromMillisF(90.0 * scale),
		good:      core.FromMillisF(135.0 * scale),
		bad:       core.FromMillisF(bad),
		miss:      core.FromMillisF(500.0),
	}
}

// FromCustom builds a window from explicit millisecond boundaries.
func FromCustom(marvelous, perfect, great, good, bad, miss float64) Window {
	return Window{
		marvelous: core.FromMillisF(marvelous),
		perfect:   core.FromMillisF(perfect),
		great:     core.FromMillisF(great),
		good:      core.FromMillisF(good),
		bad:       core.FromMillisF(bad),
		miss:      core.FromMillisF(miss),
	}
}

// Classify maps a signed timing offset to a tier. It is total: every offset
// maps to exactly one tier, with Miss as the catch-all. judgeable is false
// when the offset falls beyond the widest boundary, meaning a press there
// would not consume the note.
func (w Window) Classify(offset core.SongTime) (tier Tier, judgeable bool) {
	abs := offset.Abs()
	switch {
	case abs <= w.marvelous:
		return Marvelous, true
	case abs <= w.perfect:
		return Perfect, true
	case abs <= w.great:
		return Great, true
	case abs <= w.good:
		return Good, true
	case abs <= w.bad:
		return Bad, true
	case abs <= w.miss:
		return Miss, true
	default:
		return Miss, false
	}
}

// MissBoundary returns the widest judgeable boundary. Notes older than
// now minus this boundary with no matching input are swept as misses.
func (w Window) MissBoundary() core.SongTime {
	return w.miss
}
