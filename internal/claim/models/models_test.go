package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	d, err := ParseDecision("FAKE")
	require.NoError(t, err)
	assert.Equal(t, DecisionFraud, d)

	d, err = ParseDecision("REAL")
	require.NoError(t, err)
	assert.Equal(t, DecisionLegitimate, d)

	_, err = ParseDecision("MAYBE")
	require.Error(t, err)
}

func TestVerdict(t *testing.T) {
	t.Run("fraud requires inauthentic and confidence above threshold", func(t *testing.T) {
		assert.True(t, Verdict{IsAuthentic: false, Confidence: 0.95}.IsFraud(0.8))
		assert.False(t, Verdict{IsAuthentic: false, Confidence: 0.8}.IsFraud(0.8))
		assert.False(t, Verdict{IsAuthentic: true, Confidence: 0.99}.IsFraud(0.8))
	})

	t.Run("unavailable verdict never escalates", func(t *testing.T) {
		v := UnavailableVerdict()
		assert.False(t, v.IsFraud(0.8))
		assert.Equal(t, UnavailableConfidence, v.Confidence)
	})

	t.Run("clamp", func(t *testing.T) {
		assert.InDelta(t, 0.9, Verdict{Confidence: 90}.Clamp().Confidence, 1e-9)
		assert.InDelta(t, 1.0, Verdict{Confidence: 400}.Clamp().Confidence, 1e-9)
		assert.InDelta(t, 0.0, Verdict{Confidence: -1}.Clamp().Confidence, 1e-9)
		assert.InDelta(t, 0.7, Verdict{Confidence: 0.7}.Clamp().Confidence, 1e-9)
	})

	t.Run("scores just over one are capped, not rescaled", func(t *testing.T) {
		v := Verdict{IsAuthentic: false, Confidence: 1.5}.Clamp()
		assert.InDelta(t, 1.0, v.Confidence, 1e-9)
		assert.True(t, v.IsFraud(0.8))
		assert.InDelta(t, 0.02, Verdict{Confidence: 2}.Clamp().Confidence, 1e-9)
		assert.InDelta(t, 0.0, Verdict{Confidence: math.NaN()}.Clamp().Confidence, 1e-9)
	})
}

func TestNewClaim(t *testing.T) {
	now := time.Now()
	c, err := NewClaim("abc", now)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReview, c.Status)
	assert.NotEmpty(t, c.ID)

	_, err = NewClaim("", now)
	require.Error(t, err)
}

func TestStatus(t *testing.T) {
	assert.False(t, StatusPendingReview.IsTerminal())
	assert.True(t, StatusFraud.IsTerminal())
	assert.True(t, StatusApproved.IsTerminal())
	assert.False(t, Status("other").IsValid())
}

func TestCursor(t *testing.T) {
	c := Cursor{CreatedAt: time.Date(2026, 1, 1, 12, 0, 0, 123, time.UTC), ID: "abc"}
	decoded, err := DecodeCursor(EncodeCursor(c))
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, "abc", decoded.ID)

	for _, bad := range []string{"!!!", "bm8tc2VwYXJhdG9y", ""} {
		_, err := DecodeCursor(bad)
		require.Error(t, err, bad)
	}
}

func TestListQueryNormalize(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ListQuery{}.Normalize().Limit)
	assert.Equal(t, MaxListLimit, ListQuery{Limit: 1000}.Normalize().Limit)
	assert.Equal(t, 7, ListQuery{Limit: 7}.Normalize().Limit)
}
