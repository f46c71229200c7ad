// Package pipeline は一覧取得 → 本文取得 → 派生属性の付与 → 永続化 を直列に実行します。
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/shouni/blog-insights/pkg/listing"
	"github.com/shouni/blog-insights/pkg/types"
)

// ListingSource は一覧 (HTML または RSS) から記事要約を返します。
type ListingSource interface {
	FetchListing(ctx context.Context, url string) ([]types.ArticleSummary, error)
}

// Collector は要約のリンクごとに本文を取得します。
type Collector interface {
	Collect(ctx context.Context, summaries []types.ArticleSummary) ([]types.ArticleContent, error)
}

// Enricher は要約と本文を結合して派生フィールドを付与します。
type Enricher interface {
	EnrichAll(summaries []types.ArticleSummary, contents []types.ArticleContent) []types.EnrichedArticle
}

// Writer は付与済みの記事を保存し、実際に挿入された件数を返します。
type Writer interface {
	Upsert(ctx context.Context, articles []types.EnrichedArticle) (int64, error)
}

// Result は1回の実行の件数サマリーです。
type Result struct {
	Listed   int
	Retained int
	Fetched  int
	Enriched int
	Inserted int64
}

// Pipeline は各段の依存関係を保持します。
type Pipeline struct {
	source    ListingSource
	collector Collector
	enricher  Enricher
	writer    Writer
	verbose   bool
}

// New は Pipeline を初期化します。いずれかの依存関係が nil の場合はエラーを返します。
func New(source ListingSource, collector Collector, enricher Enricher, writer Writer, verbose bool) (*Pipeline, error) {
	switch {
	case source == nil:
		return nil, fmt.Errorf("pipeline.New: ListingSource cannot be nil")
	case collector == nil:
		return nil, fmt.Errorf("pipeline.New: Collector cannot be nil")
	case enricher == nil:
		return nil, fmt.Errorf("pipeline.New: Enricher cannot be nil")
	case writer == nil:
		return nil, fmt.Errorf("pipeline.New: Writer cannot be nil")
	}
	return &Pipeline{
		source:    source,
		collector: collector,
		enricher:  enricher,
		writer:    writer,
		verbose:   verbose,
	}, nil
}

// Run は listingURL を起点に全段を実行します。途中のエラーで中断し、それまでの件数とともに返します。
func (p *Pipeline) Run(ctx context.Context, listingURL string) (Result, error) {
	var res Result

	// 1. 一覧の取得
	summaries, err := p.source.FetchListing(ctx, listingURL)
	if err != nil {
		return res, fmt.Errorf("一覧取得エラー: %w", err)
	}
	res.Listed = len(summaries)

	// 2. リンクのない行を除外
	summaries = listing.Retained(summaries)
	res.Retained = len(summaries)
	if p.verbose {
		log.Printf("一覧から %d 件を取得し、%d 件を処理対象にしました", res.Listed, res.Retained)
	}

	// 3. 本文の取得 (1件ずつ直列)
	contents, err := p.collector.Collect(ctx, summaries)
	if err != nil {
		return res, fmt.Errorf("本文取得エラー: %w", err)
	}
	res.Fetched = len(contents)

	// 4. 派生属性の付与
	articles := p.enricher.EnrichAll(summaries, contents)
	res.Enriched = len(articles)

	// 5. 永続化
	inserted, err := p.writer.Upsert(ctx, articles)
	if err != nil {
		return res, fmt.Errorf("保存エラー: %w", err)
	}
	res.Inserted = inserted

	if p.verbose {
		log.Printf("%d 件中 %d 件を新規に保存しました", res.Enriched, res.Inserted)
	}
	return res, nil
}
