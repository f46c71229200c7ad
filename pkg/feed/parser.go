// Package feed は、一覧ページの代わりに RSS/Atom フィードから記事要約を取得します。
package feed

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/shouni/blog-insights/pkg/httpclient"
	"github.com/shouni/blog-insights/pkg/types"
)

// DefaultFeedURL は dev.to の全体フィードです。
const DefaultFeedURL = "https://dev.to/feed"

// Parser 構造体
type Parser struct {
	client httpclient.Fetcher // インターフェースに依存
}

// NewParser は新しい Parser インスタンスを初期化し、依存関係を注入します。
func NewParser(client httpclient.Fetcher) *Parser {
	return &Parser{client: client}
}

// FetchAndParse は指定されたURLからフィードを取得し、パースします。
func (p *Parser) FetchAndParse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	body, err := p.client.FetchBytes(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得失敗 (URL: %s): %w", feedURL, err)
	}

	fp := gofeed.NewParser()
	feed, parseErr := fp.Parse(bytes.NewReader(body))
	if parseErr != nil {
		return nil, fmt.Errorf("RSSフィードのパース失敗 (URL: %s): %w", feedURL, parseErr)
	}
	return feed, nil
}

// FetchListing はフィードを取得し、記事要約の一覧として返します。
// listing.Fetcher と同じ形で pipeline から利用できます。
func (p *Parser) FetchListing(ctx context.Context, feedURL string) ([]types.ArticleSummary, error) {
	feed, err := p.FetchAndParse(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	return Summaries(feed), nil
}

// Summaries は gofeed.Feed のアイテムを ArticleSummary に変換します。
// フィードには読了時間が無いため ReadingTime は常に nil です。
func Summaries(feed *gofeed.Feed) []types.ArticleSummary {
	if feed == nil || len(feed.Items) == 0 {
		return []types.ArticleSummary{}
	}

	summaries := make([]types.ArticleSummary, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		s := types.ArticleSummary{Link: strings.TrimSpace(item.Link)}

		if title := strings.TrimSpace(item.Title); title != "" {
			s.Title = types.StringPtr(title)
		}
		if item.PublishedParsed != nil {
			s.TimeUploaded = types.StringPtr(item.PublishedParsed.UTC().Format(time.RFC3339))
		} else if item.Published != "" {
			s.TimeUploaded = types.StringPtr(item.Published)
		}
		if author := authorName(item); author != "" {
			s.Author = types.StringPtr(author)
		}
		if len(item.Categories) > 0 {
			s.Tags = types.StringPtr("#" + strings.Join(item.Categories, "#"))
		}

		summaries = append(summaries, s)
	}
	return summaries
}

func authorName(item *gofeed.Item) string {
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}
