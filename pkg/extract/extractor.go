package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	textUtils "github.com/shouni/go-utils/text"

	"github.com/shouni/blog-insights/pkg/httpclient"
	"github.com/shouni/blog-insights/pkg/types"
)

// ----------------------------------------------------------------------
// 定数定義 (解析関連のみ)
// ----------------------------------------------------------------------
const (
	// DefaultBodySelector は記事本文コンテナのセレクターです。
	DefaultBodySelector = "div.crayons-article__body.text-styles.spec__body"

	paragraphSelector = "p"
	linkSelector      = "a"
)

var (
	// ErrBodyNotFound は本文コンテナが見つからなかったことを示します。
	ErrBodyNotFound = errors.New("本文コンテナが見つかりませんでした")
	// ErrNoParagraphs は本文コンテナに段落が無かったことを示します。
	ErrNoParagraphs = errors.New("本文コンテナに段落がありません")
)

// Extractor は、Fetcher を使って記事本文の抽出プロセスを管理します。
type Extractor struct {
	fetcher      httpclient.Fetcher
	bodySelector string
}

// Option は Extractor の設定を行う関数型です。
type Option func(*Extractor)

// WithBodySelector は本文コンテナのセレクターを変更します。
func WithBodySelector(selector string) Option {
	return func(e *Extractor) {
		if selector != "" {
			e.bodySelector = selector
		}
	}
}

// NewExtractor は、新しいExtractorのインスタンスを生成します。
func NewExtractor(fetcher httpclient.Fetcher, opts ...Option) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("extract.NewExtractor: Fetcher cannot be nil")
	}
	e := &Extractor{
		fetcher:      fetcher,
		bodySelector: DefaultBodySelector,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// FetchContent は記事ページを1回取得し、本文の段落テキストを結合して返します。
func (e *Extractor) FetchContent(ctx context.Context, link string) (types.ArticleContent, error) {
	// 1. Fetcherから生のバイト配列を取得 (通信の責務)
	htmlBytes, err := e.fetcher.FetchBytes(ctx, link)
	if err != nil {
		return types.ArticleContent{}, err
	}

	// 2. goquery.Documentに変換 (解析の責務)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(htmlBytes))
	if err != nil {
		return types.ArticleContent{}, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}

	text, err := ExtractBody(doc, e.bodySelector)
	if err != nil {
		return types.ArticleContent{}, fmt.Errorf("URL %s: %w", link, err)
	}

	return types.ArticleContent{Link: link, ArticleContent: text}, nil
}

// ExtractBody は本文コンテナ内の各段落からリンク要素 (テキストごと) を取り除き、
// 段落テキストを半角スペース1つで結合します。
func ExtractBody(doc *goquery.Document, selector string) (string, error) {
	body := doc.Find(selector).First()
	if body.Length() == 0 {
		return "", ErrBodyNotFound
	}

	paragraphs := body.Find(paragraphSelector)
	if paragraphs.Length() == 0 {
		return "", ErrNoParagraphs
	}

	contents := make([]string, 0, paragraphs.Length())
	paragraphs.Each(func(i int, p *goquery.Selection) {
		// 元のドキュメントを変更しないよう複製してから <a> を除去する
		cleaned := p.Clone()
		cleaned.Find(linkSelector).Remove()
		contents = append(contents, cleaned.Text())
	})

	return textUtils.NormalizeText(strings.Join(contents, " ")), nil
}
