package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedNow = time.Date(2026, 2, 10, 15, 30, 0, 0, time.UTC)

func TestParseFiltersExplicit(t *testing.T) {
	f := ParseFilters("2026-02-01", "2026-02-06", "1234", "0", fixedNow)

	assert.Equal(t, "2026-02-01", f.FromInput)
	assert.Equal(t, "2026-02-06", f.ToInput)
	assert.Equal(t, "1234", f.QrCodeID)
	assert.False(t, f.ExcludeBots)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), f.From)
	assert.Equal(t, time.Date(2026, 2, 6, 23, 59, 59, 999_000_000, time.UTC), f.To)
}

func TestParseFiltersDefaults(t *testing.T) {
	f := ParseFilters("not-a-date", "nope", "   ", "1", fixedNow)

	assert.Empty(t, f.QrCodeID)
	assert.True(t, f.ExcludeBots)
	assert.False(t, f.From.After(f.To))
	assert.Equal(t, fixedNow, f.To)
	assert.Equal(t, fixedNow.Add(-30*24*time.Hour), f.From)

	f = ParseFilters("", "", "", "", fixedNow)
	assert.True(t, f.ExcludeBots)
}

func TestParseFiltersSwapsReversedRange(t *testing.T) {
	f := ParseFilters("2026-02-09", "2026-02-01", "", "", fixedNow)
	assert.True(t, f.From.Before(f.To))
	assert.Equal(t, "2026-02-01", f.FromInput)
	assert.Equal(t, "2026-02-09", f.ToInput)
}
