// Package listing は、ブログアグリゲーターの最新記事一覧ページから記事カードの要約を抽出します。
package listing

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/blog-insights/pkg/httpclient"
	"github.com/shouni/blog-insights/pkg/types"
)

// ----------------------------------------------------------------------
// 定数定義 (一覧ページの構造に依存するセレクター)
// ----------------------------------------------------------------------
const (
	DefaultListingURL = "https://dev.to/latest"

	containerSelector   = "div.crayons-story"
	titleSelector       = "h2.crayons-story__title"
	timeSelector        = "time[datetime]"
	authorSelector      = `a[class="crayons-story__secondary fw-medium m:hidden"]`
	tagsSelector        = "div.crayons-story__tags"
	readingTimeSelector = "div.crayons-story__save"
)

// Fetcher は一覧ページを取得・解析し、記事要約を返します。
type Fetcher struct {
	client httpclient.Fetcher
}

// NewFetcher は、新しい Fetcher を生成します。
func NewFetcher(client httpclient.Fetcher) (*Fetcher, error) {
	if client == nil {
		return nil, fmt.Errorf("listing.NewFetcher: Fetcher cannot be nil")
	}
	return &Fetcher{client: client}, nil
}

// FetchListing は一覧ページを1回だけ取得し、カードごとの要約をページ順に返します。
// 相対リンクは listingURL を基準に絶対URLへ解決されます。
func (f *Fetcher) FetchListing(ctx context.Context, listingURL string) ([]types.ArticleSummary, error) {
	// 1. 生のバイト配列を取得 (通信の責務)
	body, err := f.client.FetchBytes(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("一覧ページの取得に失敗しました (URL: %s): %w", listingURL, err)
	}

	// 2. goquery.Document に変換 (解析の責務)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("一覧ページのHTML解析に失敗しました (URL: %s): %w", listingURL, err)
	}

	summaries := ParseListing(doc)

	// 3. 相対リンクの解決
	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("一覧URLのパースエラー: %w", err)
	}
	for i := range summaries {
		summaries[i].Link = resolveLink(base, summaries[i].Link)
	}
	return summaries, nil
}

// ParseListing はドキュメント内の全カードから要約を抽出します。
// 要素が欠けている場合はそのフィールドだけが nil になり、レコード自体は常に生成されます。
func ParseListing(doc *goquery.Document) []types.ArticleSummary {
	var summaries []types.ArticleSummary

	doc.Find(containerSelector).Each(func(i int, box *goquery.Selection) {
		summary := types.ArticleSummary{}

		title := box.Find(titleSelector).First()
		if title.Length() > 0 {
			if href, ok := title.Find("a").First().Attr("href"); ok {
				summary.Link = href
			}
			summary.Title = textOf(title)
		}

		if ts, ok := box.Find(timeSelector).First().Attr("datetime"); ok {
			summary.TimeUploaded = types.StringPtr(ts)
		}

		summary.Author = textOf(box.Find(authorSelector).First())
		summary.Tags = textOf(box.Find(tagsSelector).First())
		summary.ReadingTime = textOf(box.Find(readingTimeSelector).First())

		summaries = append(summaries, summary)
	})

	return summaries
}

// Retained はリンクを取得できなかった行を取り除きます。
func Retained(summaries []types.ArticleSummary) []types.ArticleSummary {
	retained := make([]types.ArticleSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.Link != "" {
			retained = append(retained, s)
		}
	}
	return retained
}

// textOf は要素が存在すれば正規化済みテキストを、存在しなければ nil を返します。
func textOf(s *goquery.Selection) *string {
	if s.Length() == 0 {
		return nil
	}
	return types.StringPtr(textUtils.NormalizeText(s.Text()))
}

func resolveLink(base *url.URL, link string) string {
	if link == "" {
		return ""
	}
	ref, err := url.Parse(link)
	if err != nil {
		return link
	}
	return base.ResolveReference(ref).String()
}
