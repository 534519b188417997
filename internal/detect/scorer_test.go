package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/honeypot/internal/detect"
)

func categories(v detect.Verdict) []string {
	out := make([]string, 0, len(v.Signals))
	for _, s := range v.Signals {
		out = append(out, s.Category)
	}
	return out
}

func TestScorer_Score(t *testing.T) {
	t.Parallel()

	s := detect.NewScorer(detect.DefaultThreshold)

	t.Run("blocked account threat fires three categories", func(t *testing.T) {
		t.Parallel()

		v := s.Score("URGENT! Your account is blocked, verify now or suffer penalty")

		assert.ElementsMatch(t,
			[]string{"urgency tactics", "financial threats", "sensitive data requests"},
			categories(v))
		assert.GreaterOrEqual(t, v.Confidence, 0.6)
		assert.True(t, v.IsScam)
	})

	t.Run("greeting scores zero", func(t *testing.T) {
		t.Parallel()

		v := s.Score("hi")

		assert.Zero(t, v.Confidence)
		assert.False(t, v.IsScam)
		assert.Empty(t, v.Signals)
		assert.Equal(t, detect.NoIndicators, v.Reason())
	})

	t.Run("category contribution is capped", func(t *testing.T) {
		t.Parallel()

		v := s.Score("urgent: act immediately, today, right now")

		require.Len(t, v.Signals, 1)
		assert.Equal(t, 4, v.Signals[0].Matches)
		assert.InDelta(t, 0.30, v.Confidence, 1e-9)
		assert.Equal(t, "urgency tactics (4 indicators)", v.Reason())
	})

	t.Run("link adds a flat contribution", func(t *testing.T) {
		t.Parallel()

		v := s.Score("see http://bit.ly/abc and https://evil.example/login")

		assert.InDelta(t, 0.20, v.Confidence, 1e-9)
		assert.Equal(t, "suspicious links (2 found)", v.Reason())
	})

	t.Run("sum at the threshold is a scam", func(t *testing.T) {
		t.Parallel()

		// one urgency (0.15) + one financial (0.20) + one sensitive (0.25)
		v := s.Score("security alert: share the otp today")

		assert.InDelta(t, 0.60, v.Confidence, 1e-9)
		assert.True(t, v.IsScam)
	})

	t.Run("total is clamped to one", func(t *testing.T) {
		t.Parallel()

		v := s.Score("Congratulations you won a lottery prize! RBI police: bank account blocked, " +
			"fraud detected. Share OTP, PIN, CVV immediately at http://claim.example now")

		assert.InDelta(t, 1.0, v.Confidence, 1e-9)
		assert.True(t, v.IsScam)
		assert.Len(t, v.Reasons, 6)
	})

	t.Run("reasons are joined with semicolons", func(t *testing.T) {
		t.Parallel()

		v := s.Score("urgent refund")

		assert.Equal(t, "urgency tactics (1 indicators); reward/prize tactics (1 indicators)", v.Reason())
	})

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		text := "Your account is blocked, verify immediately or it will be suspended"
		assert.Equal(t, s.Score(text), s.Score(text))
	})
}

func TestScorer_Threshold(t *testing.T) {
	t.Parallel()

	t.Run("custom threshold", func(t *testing.T) {
		t.Parallel()

		strict := detect.NewScorer(0.9)
		v := strict.Score("Your account is blocked, verify immediately or it will be suspended")

		assert.InDelta(t, 0.75, v.Confidence, 1e-9)
		assert.False(t, v.IsScam)
	})

	t.Run("non-positive threshold uses default", func(t *testing.T) {
		t.Parallel()

		assert.InDelta(t, detect.DefaultThreshold, detect.NewScorer(0).Threshold(), 1e-9)
	})
}

func TestDefaultCategories_Disjoint(t *testing.T) {
	t.Parallel()

	seen := make(map[string]string)
	for _, c := range detect.DefaultCategories() {
		for _, p := range c.Phrases {
			other, dup := seen[p]
			assert.False(t, dup, "phrase %q in both %q and %q", p, other, c.Name)
			seen[p] = c.Name
		}
	}
}
