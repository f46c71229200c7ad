package cmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/blog-insights/pkg/types"
)

func resetDashboardFlags(t *testing.T) {
	t.Helper()
	saved := dashboardFlags
	t.Cleanup(func() { dashboardFlags = saved })

	dashboardFlags.author = ""
	dashboardFlags.sentiments = nil
	dashboardFlags.tags = nil
	dashboardFlags.from, dashboardFlags.to = "", ""
	dashboardFlags.minWords, dashboardFlags.maxWords = -1, -1
	dashboardFlags.minReading, dashboardFlags.maxReading = -1, -1
}

func TestBuildFilter_Defaults(t *testing.T) {
	resetDashboardFlags(t)

	f, err := buildFilter()
	require.NoError(t, err)
	assert.Nil(t, f.Author)
	assert.Empty(t, f.Sentiments)
	assert.Nil(t, f.From)
	assert.Nil(t, f.MinWords)
	assert.Nil(t, f.MaxReading)
}

func TestBuildFilter_AllFields(t *testing.T) {
	resetDashboardFlags(t)
	dashboardFlags.author = "Jane"
	dashboardFlags.sentiments = []string{"Positive", "Negative"}
	dashboardFlags.tags = []string{"go"}
	dashboardFlags.from = "2024-05-01"
	dashboardFlags.to = "2024-05-31"
	dashboardFlags.minWords = 0
	dashboardFlags.maxReading = 10

	f, err := buildFilter()
	require.NoError(t, err)
	assert.Equal(t, "Jane", types.Deref(f.Author))
	assert.Equal(t, []types.Sentiment{types.Positive, types.Negative}, f.Sentiments)
	assert.Equal(t, []string{"go"}, f.Tags)
	require.NotNil(t, f.From)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *f.From)
	require.NotNil(t, f.MinWords)
	assert.Equal(t, 0, *f.MinWords)
	require.NotNil(t, f.MaxReading)
	assert.Equal(t, 10, *f.MaxReading)
}

func TestBuildFilter_Invalid(t *testing.T) {
	resetDashboardFlags(t)
	dashboardFlags.sentiments = []string{"Happy"}
	_, err := buildFilter()
	assert.Error(t, err)

	resetDashboardFlags(t)
	dashboardFlags.from = "05/01/2024"
	_, err = buildFilter()
	assert.Error(t, err)
}
