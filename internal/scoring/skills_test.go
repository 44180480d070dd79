package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScreen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resume  string
		jd      string
		pct     float64
		rec     Recommendation
		matched []string
		missing []string
	}{
		{
			name:    "normalises case and whitespace",
			resume:  "Python, SQL",
			jd:      "python,sql",
			pct:     100,
			rec:     Shortlist,
			matched: []string{"python", "sql"},
			missing: []string{},
		},
		{
			name:    "one of three",
			resume:  "python",
			jd:      "python, sql, aws",
			pct:     33.33,
			rec:     Reject,
			matched: []string{"python"},
			missing: []string{"aws", "sql"},
		},
		{
			name:    "half is hold",
			resume:  "go,k8s",
			jd:      "Go, Terraform",
			pct:     50,
			rec:     Hold,
			matched: []string{"go"},
			missing: []string{"terraform"},
		},
		{
			name:    "three of four shortlists",
			resume:  "a,b,c",
			jd:      "a,b,c,d",
			pct:     75,
			rec:     Shortlist,
			matched: []string{"a", "b", "c"},
			missing: []string{"d"},
		},
		{
			name:    "two of three rounds up",
			resume:  "a,b",
			jd:      "a,b,c",
			pct:     66.67,
			rec:     Hold,
			matched: []string{"a", "b"},
			missing: []string{"c"},
		},
		{
			name:    "blank tokens collapse into one empty skill",
			resume:  "python",
			jd:      " , ",
			pct:     0,
			rec:     Reject,
			matched: []string{},
			missing: []string{""},
		},
		{
			name:    "trailing comma counts toward the denominator",
			resume:  "python",
			jd:      "python, sql,",
			pct:     33.33,
			rec:     Reject,
			matched: []string{"python"},
			missing: []string{"", "sql"},
		},
		{
			name:    "empty token matches on both sides",
			resume:  "go,,sql",
			jd:      "go, ,rust",
			pct:     66.67,
			rec:     Hold,
			matched: []string{"", "go"},
			missing: []string{"rust"},
		},
		{
			name:    "duplicates collapse",
			resume:  "SQL,sql",
			jd:      "sql, SQL ,sql",
			pct:     100,
			rec:     Shortlist,
			matched: []string{"sql"},
			missing: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Screen(tt.resume, tt.jd)
			assert.InDelta(t, tt.pct, got.MatchPercentage, 1e-9)
			assert.Equal(t, tt.rec, got.Recommendation)
			assert.Equal(t, tt.matched, got.Matched)
			assert.Equal(t, tt.missing, got.Missing)
		})
	}
}

func TestScreenDeterministic(t *testing.T) {
	t.Parallel()

	first := Screen("rust, go, python, sql", "sql, go, aws, gcp, python")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Screen("rust, go, python, sql", "sql, go, aws, gcp, python"))
	}
}

func TestRecommendationBoundaries(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Reject, RecommendationFor(49.99))
	assert.Equal(t, Hold, RecommendationFor(50))
	assert.Equal(t, Hold, RecommendationFor(74.99))
	assert.Equal(t, Shortlist, RecommendationFor(75))
}
