package scoring

import (
	"math"
	"sort"
	"strings"
)

// Recommendation is the screening outcome derived from the match percentage.
type Recommendation string

const (
	Shortlist Recommendation = "Shortlist"
	Hold      Recommendation = "Hold"
	Reject    Recommendation = "Reject"
)

const (
	shortlistThreshold = 75.0
	holdThreshold      = 50.0
)

// Screening is the deterministic skill-overlap result. Matched and Missing are
// sorted so repeated runs produce identical output.
type Screening struct {
	ResumeSkills    int
	JobSkills       int
	Matched         []string
	Missing         []string
	MatchPercentage float64
	Recommendation  Recommendation
}

// Screen compares two comma-delimited skill lists. Tokens are trimmed,
// lower-cased and de-duplicated. An empty token is a member like any other, so
// "python, sql," holds three skills. The percentage is
// the share of job-description skills present in the resume, rounded to two
// decimals, with the denominator floored at one.
func Screen(resumeCSV, jdCSV string) Screening {
	resume := SkillSet(resumeCSV)
	jd := SkillSet(jdCSV)

	matched := make([]string, 0, len(jd))
	missing := make([]string, 0, len(jd))
	for skill := range jd {
		if _, ok := resume[skill]; ok {
			matched = append(matched, skill)
		} else {
			missing = append(missing, skill)
		}
	}
	sort.Strings(matched)
	sort.Strings(missing)

	pct := round2(100 * float64(len(matched)) / float64(max(len(jd), 1)))

	return Screening{
		ResumeSkills:    len(resume),
		JobSkills:       len(jd),
		Matched:         matched,
		Missing:         missing,
		MatchPercentage: pct,
		Recommendation:  RecommendationFor(pct),
	}
}

// RecommendationFor maps a percentage onto Shortlist (>=75), Hold (>=50) or Reject.
func RecommendationFor(pct float64) Recommendation {
	switch {
	case pct >= shortlistThreshold:
		return Shortlist
	case pct >= holdThreshold:
		return Hold
	default:
		return Reject
	}
}

// SkillSet normalises a comma-delimited list into a set.
func SkillSet(csv string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Split(csv, ",") {
		set[strings.ToLower(strings.TrimSpace(token))] = struct{}{}
	}
	return set
}

func round2(v float64) float64 {
	v = math.Round(v*100) / 100
	return math.Max(0, math.Min(100, v))
}
