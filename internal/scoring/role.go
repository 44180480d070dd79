// Package scoring holds the deterministic post-processing applied to model
// judgments: role-level score offsets, verdict thresholds and skill overlap.
// Everything here is pure and safe for concurrent use.
package scoring

import (
	"math"
	"strings"
)

// RoleLevel is the seniority a candidate is being assessed for.
type RoleLevel string

const (
	Junior RoleLevel = "Junior"
	Mid    RoleLevel = "Mid"
	Senior RoleLevel = "Senior"
)

// Levels lists the recognised role levels in ascending seniority.
var Levels = []RoleLevel{Junior, Mid, Senior}

// Verdict is the three-way interview judgment derived from an adjusted score.
type Verdict string

const (
	Pass       Verdict = "Pass"
	Borderline Verdict = "Borderline"
	Fail       Verdict = "Fail"
)

const (
	MinScore = 0
	MaxScore = 100

	passThreshold       = 70
	borderlineThreshold = 50
)

// roleOffsets re-targets a score judged against the Junior baseline.
var roleOffsets = map[RoleLevel]int{
	Junior: 0,
	Mid:    -15,
	Senior: -30,
}

// ParseRoleLevel matches s case-insensitively against the known levels.
// The second return is false for blank or unknown input.
func ParseRoleLevel(s string) (RoleLevel, bool) {
	s = strings.TrimSpace(s)
	for _, level := range Levels {
		if strings.EqualFold(s, string(level)) {
			return level, true
		}
	}
	return RoleLevel(s), false
}

// Offset returns the fixed adjustment for level. Unknown levels get 0.
func Offset(level RoleLevel) int {
	known, ok := ParseRoleLevel(string(level))
	if !ok {
		return 0
	}
	return roleOffsets[known]
}

// Adjustment is the audited result of re-targeting a baseline score.
type Adjustment struct {
	Base     float64
	Level    RoleLevel
	Offset   int
	Adjusted int
	Verdict  Verdict
}

// Score applies the role offset to a Junior-baseline score, rounds to the
// nearest integer and clamps into [0,100]. The verdict is derived from the
// clamped value only.
func Score(base float64, level RoleLevel) Adjustment {
	if math.IsNaN(base) {
		base = 0
	}

	offset := Offset(level)
	adjusted := Clamp(int(math.Round(clampFloat(base+float64(offset)))), MinScore, MaxScore)

	return Adjustment{
		Base:     base,
		Level:    level,
		Offset:   offset,
		Adjusted: adjusted,
		Verdict:  VerdictFor(adjusted),
	}
}

// VerdictFor is a step function with breakpoints at 50 and 70.
func VerdictFor(score int) Verdict {
	switch {
	case score >= passThreshold:
		return Pass
	case score >= borderlineThreshold:
		return Borderline
	default:
		return Fail
	}
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clampFloat keeps infinities from overflowing the int conversion.
func clampFloat(v float64) float64 {
	return math.Max(MinScore-1, math.Min(MaxScore+1, v))
}
