package pipeline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/blog-insights/pkg/enrich"
	"github.com/shouni/blog-insights/pkg/extract"
	"github.com/shouni/blog-insights/pkg/listing"
	"github.com/shouni/blog-insights/pkg/scraper"
	"github.com/shouni/blog-insights/pkg/sentiment"
	"github.com/shouni/blog-insights/pkg/types"
)

const listingHTML = `<html><body>
<div class="crayons-story">
  <h2 class="crayons-story__title"><a href="/a/1">Hello</a></h2>
  <time datetime="2024-05-01T10:00:00Z">May 1</time>
  <a class="crayons-story__secondary fw-medium m:hidden">Jane</a>
  <div class="crayons-story__tags">#go#rust</div>
  <div class="crayons-story__save">5 min read</div>
</div>
<div class="crayons-story">
  <h2 class="crayons-story__title">No link here</h2>
</div>
</body></html>`

const articleHTML = `<html><body>
<div class="crayons-article__body text-styles spec__body">
  <p>Hi there.</p>
  <p>See <a href="/more">more</a> here.</p>
</div>
</body></html>`

// mapFetcher はURLごとに固定のレスポンスを返します。
type mapFetcher struct {
	pages map[string]string
	calls []string
}

func (f *mapFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	f.calls = append(f.calls, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, fmt.Errorf("unexpected URL: %s", url)
	}
	return []byte(body), nil
}

type fixedDetector struct{ code string }

func (d fixedDetector) Detect(string) string { return d.code }

// memoryWriter は link の一意性を保つインメモリの Writer です。
type memoryWriter struct {
	rows map[string]types.EnrichedArticle
	err  error
}

func (w *memoryWriter) Upsert(ctx context.Context, articles []types.EnrichedArticle) (int64, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.rows == nil {
		w.rows = map[string]types.EnrichedArticle{}
	}
	var inserted int64
	for _, a := range articles {
		if _, exists := w.rows[a.Link]; exists {
			continue
		}
		w.rows[a.Link] = a
		inserted++
	}
	return inserted, nil
}

func newTestPipeline(t *testing.T, fetcher *mapFetcher, writer Writer) *Pipeline {
	t.Helper()

	lf, err := listing.NewFetcher(fetcher)
	require.NoError(t, err)
	ex, err := extract.NewExtractor(fetcher)
	require.NoError(t, err)
	sc, err := scraper.New(ex, scraper.WithDelay(0))
	require.NoError(t, err)
	en, err := enrich.NewEnricher(sentiment.NewAnalyzer(), fixedDetector{code: "en"}, nil)
	require.NoError(t, err)

	p, err := New(lf, sc, en, writer, false)
	require.NoError(t, err)
	return p
}

func TestRun_EndToEnd(t *testing.T) {
	fetcher := &mapFetcher{pages: map[string]string{
		"https://dev.to/latest": listingHTML,
		"https://dev.to/a/1":    articleHTML,
	}}
	writer := &memoryWriter{}
	p := newTestPipeline(t, fetcher, writer)

	res, err := p.Run(context.Background(), "https://dev.to/latest")
	require.NoError(t, err)

	assert.Equal(t, Result{Listed: 2, Retained: 1, Fetched: 1, Enriched: 1, Inserted: 1}, res)
	assert.Equal(t, []string{"https://dev.to/latest", "https://dev.to/a/1"}, fetcher.calls)

	row, ok := writer.rows["https://dev.to/a/1"]
	require.True(t, ok)
	assert.Equal(t, "Hello", types.Deref(row.Title))
	assert.Equal(t, "Jane", types.Deref(row.Author))
	assert.Equal(t, "Hi there. See here.", row.ArticleContent)
	assert.Equal(t, 2, row.WordCount)
	assert.Equal(t, types.Neutral, row.Sentiment)
	assert.Equal(t, "English", row.Language)
	require.NotNil(t, row.ReadingTime)
	assert.Equal(t, 5, *row.ReadingTime)
	require.NotNil(t, row.TimeUploaded)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), *row.TimeUploaded)
	assert.ElementsMatch(t, []string{"go", "rust"}, row.TagSet())
}

func TestRun_SecondRunInsertsNothing(t *testing.T) {
	fetcher := &mapFetcher{pages: map[string]string{
		"https://dev.to/latest": listingHTML,
		"https://dev.to/a/1":    articleHTML,
	}}
	writer := &memoryWriter{}
	p := newTestPipeline(t, fetcher, writer)

	_, err := p.Run(context.Background(), "https://dev.to/latest")
	require.NoError(t, err)
	res, err := p.Run(context.Background(), "https://dev.to/latest")
	require.NoError(t, err)

	assert.Equal(t, int64(0), res.Inserted)
	assert.Len(t, writer.rows, 1)
}

func TestRun_ContentFailureAbortsBeforePersistence(t *testing.T) {
	fetcher := &mapFetcher{pages: map[string]string{
		"https://dev.to/latest": listingHTML,
	}}
	writer := &memoryWriter{}
	p := newTestPipeline(t, fetcher, writer)

	res, err := p.Run(context.Background(), "https://dev.to/latest")
	require.Error(t, err)
	assert.Equal(t, 1, res.Retained)
	assert.Empty(t, writer.rows)
}

func TestRun_ListingFailure(t *testing.T) {
	p := newTestPipeline(t, &mapFetcher{pages: map[string]string{}}, &memoryWriter{})

	_, err := p.Run(context.Background(), "https://dev.to/latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "一覧取得エラー")
}

func TestRun_PersistenceFailure(t *testing.T) {
	fetcher := &mapFetcher{pages: map[string]string{
		"https://dev.to/latest": listingHTML,
		"https://dev.to/a/1":    articleHTML,
	}}
	writer := &memoryWriter{err: errors.New("rollback")}
	p := newTestPipeline(t, fetcher, writer)

	res, err := p.Run(context.Background(), "https://dev.to/latest")
	require.Error(t, err)
	assert.Equal(t, 1, res.Enriched)
	assert.Zero(t, res.Inserted)
}

func TestNew_NilDependencies(t *testing.T) {
	_, err := New(nil, nil, nil, nil, false)
	assert.Error(t, err)
}
