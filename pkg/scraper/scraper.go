package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shouni/blog-insights/pkg/types"
)

// DefaultRequestDelay は記事ページ取得の間に挟む待機時間のデフォルト値です。
const DefaultRequestDelay = 1000 * time.Millisecond

// ContentFetcher は記事リンクから本文を取得する依存関係です。
// *extract.Extractor がこれを満たします。
type ContentFetcher interface {
	FetchContent(ctx context.Context, link string) (types.ArticleContent, error)
}

// Scraper は要約一覧の各リンクを1件ずつ順番に取得します。
type Scraper struct {
	fetcher ContentFetcher
	delay   time.Duration
	verbose bool
}

// Option は Scraper の設定を変更します。
type Option func(*Scraper)

// WithDelay はリクエスト間の待機時間を設定します。0 以下で待機しません。
func WithDelay(d time.Duration) Option {
	return func(s *Scraper) {
		s.delay = d
	}
}

// WithVerbose は1件ごとの進捗ログを有効にします。
func WithVerbose(v bool) Option {
	return func(s *Scraper) {
		s.verbose = v
	}
}

// New は Scraper を初期化します。
func New(fetcher ContentFetcher, opts ...Option) (*Scraper, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("scraper.New: ContentFetcher cannot be nil")
	}
	s := &Scraper{
		fetcher: fetcher,
		delay:   DefaultRequestDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Collect は summaries の順序どおりに本文を取得します。
// 1件でも失敗した場合はそこで中断し、エラーを返します (部分結果は返しません)。
func (s *Scraper) Collect(ctx context.Context, summaries []types.ArticleSummary) ([]types.ArticleContent, error) {
	contents := make([]types.ArticleContent, 0, len(summaries))

	var rateLimiter <-chan time.Time
	if s.delay > 0 && len(summaries) > 1 {
		ticker := time.NewTicker(s.delay)
		defer ticker.Stop()
		rateLimiter = ticker.C
	}

	for i, summary := range summaries {
		// 2件目以降はレートリミット間隔の経過を待つ
		if i > 0 && rateLimiter != nil {
			select {
			case <-rateLimiter:
			case <-ctx.Done():
				return nil, fmt.Errorf("本文の取得を中断しました: %w", ctx.Err())
			}
		} else if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("本文の取得を中断しました: %w", err)
		}

		content, err := s.fetcher.FetchContent(ctx, summary.Link)
		if err != nil {
			return nil, fmt.Errorf("コンテンツの抽出に失敗しました (URL: %s): %w", summary.Link, err)
		}
		if s.verbose {
			log.Printf("[%d/%d] 本文を取得しました: %s", i+1, len(summaries), summary.Link)
		}
		contents = append(contents, content)
	}

	return contents, nil
}
