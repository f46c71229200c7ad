package extract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/blog-insights/pkg/extract"
	"github.com/shouni/blog-insights/pkg/httpclient"
)

var _ httpclient.Fetcher = (*MockFetcher)(nil)

// ======================================================================
// モック (Mock) の定義
// ======================================================================

// MockFetcher はテスト用の httpclient.Fetcher インターフェースの実装です。
type MockFetcher struct {
	htmlContent string
	fetchError  error
}

// FetchBytes はモックされたHTMLをバイト配列として返すか、エラーを返します。
func (m *MockFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if m.fetchError != nil {
		return nil, m.fetchError
	}
	return []byte(m.htmlContent), nil
}

// ======================================================================
// テスト関数
// ======================================================================

func TestNewExtractor(t *testing.T) {
	t.Run("success_with_valid_fetcher", func(t *testing.T) {
		extractor, err := extract.NewExtractor(&MockFetcher{})
		assert.NoError(t, err)
		assert.NotNil(t, extractor)
	})

	t.Run("success_with_shared_http_client", func(t *testing.T) {
		extractor, err := extract.NewExtractor(httpclient.New(httpclient.DefaultHTTPTimeout, 0))
		assert.NoError(t, err)
		assert.NotNil(t, extractor)
	})

	t.Run("error_with_nil_fetcher", func(t *testing.T) {
		extractor, err := extract.NewExtractor(nil)
		assert.Error(t, err)
		assert.Nil(t, extractor)
		assert.Contains(t, err.Error(), "Fetcher cannot be nil")
	})
}

func TestFetchContent(t *testing.T) {
	const body = `<div class="crayons-article__body text-styles spec__body">`

	testCases := []struct {
		name          string
		html          string
		selector      string
		fetchErr      error
		expectedText  string
		expectedError error
		expectAnyErr  bool
	}{
		{
			name:         "fetch_error",
			fetchErr:     errors.New("network timeout"),
			expectAnyErr: true,
		},
		{
			name:         "paragraphs_with_link_removed",
			html:         `<html><body>` + body + `<p>Hi there.</p><p>See <a href="/x">more</a> here.</p></div></body></html>`,
			expectedText: "Hi there. See here.",
		},
		{
			name:         "non_paragraph_elements_are_ignored",
			html:         `<html><body>` + body + `<h2>Heading</h2><p>Only this.</p><pre>code()</pre></div></body></html>`,
			expectedText: "Only this.",
		},
		{
			name:         "paragraphs_outside_body_are_ignored",
			html:         `<html><body><p>Sidebar</p>` + body + `<p>Inside.</p></div></body></html>`,
			expectedText: "Inside.",
		},
		{
			name:          "missing_body_container",
			html:          `<html><body><p>No body here.</p></body></html>`,
			expectedError: extract.ErrBodyNotFound,
		},
		{
			name:          "body_without_paragraphs",
			html:          `<html><body>` + body + `<div>text</div></div></body></html>`,
			expectedError: extract.ErrNoParagraphs,
		},
		{
			name:         "custom_selector",
			html:         `<html><body><article class="post"><p>Custom body.</p></article></body></html>`,
			selector:     "article.post",
			expectedText: "Custom body.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := &MockFetcher{htmlContent: tc.html, fetchError: tc.fetchErr}
			extractor, err := extract.NewExtractor(fetcher, extract.WithBodySelector(tc.selector))
			assert.NoError(t, err)

			link := "https://example.com/" + tc.name
			content, err := extractor.FetchContent(context.Background(), link)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				return
			}
			if tc.expectAnyErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, link, content.Link)
			assert.Equal(t, tc.expectedText, content.ArticleContent)
		})
	}
}
