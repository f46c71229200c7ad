package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/blog-insights/pkg/types"
)

// MockFetcher はテスト対象の Parser.client が依存する Fetcher インターフェースのモックです。
type MockFetcher struct {
	FetchBytesFunc func(ctx context.Context, url string) ([]byte, error)
}

func (m *MockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return m.FetchBytesFunc(ctx, url)
}

func TestFetchAndParse(t *testing.T) {
	ctx := context.Background()
	testURL := "http://example.com/feed"

	validRSS := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Test Feed</title>
    <link>http://example.com/</link>
    <item>
      <title>Test Item</title>
      <link>http://example.com/item1</link>
      <dc:creator>Jane</dc:creator>
      <pubDate>Wed, 01 May 2024 10:00:00 +0000</pubDate>
      <category>go</category>
      <category>rust</category>
    </item>
  </channel>
</rss>`

	tests := []struct {
		name          string
		mockFetchFunc func(ctx context.Context, url string) ([]byte, error)
		expectedTitle string
		expectError   bool
		errorContains string
	}{
		{
			name: "成功ケース_有効なRSS",
			mockFetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				if url != testURL {
					t.Fatalf("予期せぬURLが呼び出されました: %s", url)
				}
				return []byte(validRSS), nil
			},
			expectedTitle: "Test Feed",
		},
		{
			name: "エラーケース_フィード取得失敗",
			mockFetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return nil, errors.New("HTTPエラー: 500 Internal Server Error")
			},
			expectError:   true,
			errorContains: "フィードの取得失敗",
		},
		{
			name: "エラーケース_パース失敗",
			mockFetchFunc: func(ctx context.Context, url string) ([]byte, error) {
				return []byte(`<invalid><tag>`), nil
			},
			expectError:   true,
			errorContains: "RSSフィードのパース失敗",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Parser{client: &MockFetcher{FetchBytesFunc: tt.mockFetchFunc}}

			feed, err := p.FetchAndParse(ctx, testURL)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedTitle, feed.Title)
		})
	}

	t.Run("FetchListingは要約に変換する", func(t *testing.T) {
		p := NewParser(&MockFetcher{FetchBytesFunc: func(ctx context.Context, url string) ([]byte, error) {
			return []byte(validRSS), nil
		}})

		summaries, err := p.FetchListing(ctx, testURL)
		require.NoError(t, err)
		require.Len(t, summaries, 1)
		s := summaries[0]
		assert.Equal(t, "http://example.com/item1", s.Link)
		assert.Equal(t, "Test Item", types.Deref(s.Title))
		assert.Equal(t, "Jane", types.Deref(s.Author))
		assert.Equal(t, "2024-05-01T10:00:00Z", types.Deref(s.TimeUploaded))
		assert.Equal(t, []string{"go", "rust"}, types.SplitTags(types.Deref(s.Tags)))
		assert.Nil(t, s.ReadingTime)
	})
}

func TestSummaries(t *testing.T) {
	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("JST", 9*3600))

	tests := []struct {
		name     string
		feed     *gofeed.Feed
		expected []types.ArticleSummary
	}{
		{
			name:     "エッジケース_フィードがnil",
			feed:     nil,
			expected: []types.ArticleSummary{},
		},
		{
			name:     "エッジケース_アイテムが空",
			feed:     &gofeed.Feed{Items: []*gofeed.Item{}},
			expected: []types.ArticleSummary{},
		},
		{
			name: "正常ケース_欠損フィールドはnil",
			feed: &gofeed.Feed{Items: []*gofeed.Item{
				{Link: "http://example.com/a", PublishedParsed: &published, Authors: []*gofeed.Person{{Name: "Bob"}}},
				{Link: ""},
			}},
			expected: []types.ArticleSummary{
				{Link: "http://example.com/a", TimeUploaded: types.StringPtr("2024-05-01T03:00:00Z"), Author: types.StringPtr("Bob")},
				{Link: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Summaries(tt.feed))
		})
	}
}
