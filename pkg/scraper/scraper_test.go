package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shouni/blog-insights/pkg/types"
)

type MockContentFetcher struct {
	mock.Mock
}

func (m *MockContentFetcher) FetchContent(ctx context.Context, link string) (types.ArticleContent, error) {
	args := m.Called(ctx, link)
	return args.Get(0).(types.ArticleContent), args.Error(1)
}

func summaries(links ...string) []types.ArticleSummary {
	out := make([]types.ArticleSummary, 0, len(links))
	for _, l := range links {
		out = append(out, types.ArticleSummary{Link: l})
	}
	return out
}

func TestNew_NilFetcher(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestCollect_PreservesOrder(t *testing.T) {
	fetcher := new(MockContentFetcher)
	for _, l := range []string{"/a", "/b", "/c"} {
		fetcher.On("FetchContent", mock.Anything, l).
			Return(types.ArticleContent{Link: l, ArticleContent: "body " + l}, nil).Once()
	}

	s, err := New(fetcher, WithDelay(time.Millisecond))
	require.NoError(t, err)

	got, err := s.Collect(context.Background(), summaries("/a", "/b", "/c"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "/a", got[0].Link)
	assert.Equal(t, "/b", got[1].Link)
	assert.Equal(t, "/c", got[2].Link)
	fetcher.AssertExpectations(t)
}

func TestCollect_AbortsOnFirstError(t *testing.T) {
	fetcher := new(MockContentFetcher)
	fetcher.On("FetchContent", mock.Anything, "/a").
		Return(types.ArticleContent{Link: "/a", ArticleContent: "ok"}, nil).Once()
	fetcher.On("FetchContent", mock.Anything, "/b").
		Return(types.ArticleContent{}, errors.New("404 Not Found")).Once()

	s, err := New(fetcher, WithDelay(0))
	require.NoError(t, err)

	got, err := s.Collect(context.Background(), summaries("/a", "/b", "/c"))
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "/b")
	fetcher.AssertNotCalled(t, "FetchContent", mock.Anything, "/c")
}

func TestCollect_CanceledContext(t *testing.T) {
	fetcher := new(MockContentFetcher)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := New(fetcher)
	require.NoError(t, err)

	_, err = s.Collect(ctx, summaries("/a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	fetcher.AssertNotCalled(t, "FetchContent", mock.Anything, mock.Anything)
}

func TestCollect_Empty(t *testing.T) {
	s, err := New(new(MockContentFetcher))
	require.NoError(t, err)

	got, err := s.Collect(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
