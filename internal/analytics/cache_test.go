package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) *ReportCache {
	t.Helper()
	cache, err := OpenReportCache(t.TempDir(), time.Hour, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestReportCacheRoundTrip(t *testing.T) {
	cache := setupCache(t)
	window := weekWindow()

	report := &WeeklyReport{
		UserID:       "u1",
		Window:       window,
		ReadingCount: 4,
		Metrics:      WeeklyMetrics{AverageHeartRate: 72, SleepQualityTrend: TrendStable},
		Risk:         RiskAssessment{Score: 0, Recommendations: []string{msgWithinNormal}},
		Goals:        GoalsSummary{Total: 2, Completed: 1, NextDeadlines: []GoalDeadline{}},
		Insights:     []Insight{{Type: InsightInfo, Message: "test"}},
	}

	require.NoError(t, cache.Put(report))

	got, err := cache.Get("u1", window.Start)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, report.UserID, got.UserID)
	assert.Equal(t, report.Metrics, got.Metrics)
	assert.Equal(t, report.Risk, got.Risk)
	assert.Equal(t, report.Insights, got.Insights)
}

func TestReportCacheMiss(t *testing.T) {
	cache := setupCache(t)

	got, err := cache.Get("nobody", weekWindow().Start)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReportCacheKeysAreScoped(t *testing.T) {
	cache := setupCache(t)
	window := weekWindow()

	require.NoError(t, cache.Put(&WeeklyReport{UserID: "u1", Window: window}))

	// Different user, same week.
	got, err := cache.Get("u2", window.Start)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Same user, different week.
	got, err = cache.Get("u1", window.Start.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReportCacheInvalidate(t *testing.T) {
	cache := setupCache(t)
	window := weekWindow()

	require.NoError(t, cache.Put(&WeeklyReport{UserID: "u1", Window: window}))
	require.NoError(t, cache.Invalidate("u1", window.Start))

	got, err := cache.Get("u1", window.Start)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Invalidating an absent entry is not an error.
	assert.NoError(t, cache.Invalidate("u1", window.Start))
}
