package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/blog-insights/internal/pipeline"
	"github.com/shouni/blog-insights/pkg/enrich"
	"github.com/shouni/blog-insights/pkg/extract"
	"github.com/shouni/blog-insights/pkg/feed"
	"github.com/shouni/blog-insights/pkg/httpclient"
	"github.com/shouni/blog-insights/pkg/listing"
	"github.com/shouni/blog-insights/pkg/scraper"
	"github.com/shouni/blog-insights/pkg/sentiment"
)

const (
	sourceHTML = "html"
	sourceFeed = "feed"

	defaultScrapeTimeout = 15 * time.Minute
)

var scrapeFlags struct {
	source  string
	url     string
	delay   time.Duration
	timeout time.Duration
}

// newScrapePipeline はフラグと設定から各段を組み立てます。
func newScrapePipeline(fetcher httpclient.Fetcher, writer pipeline.Writer, verbose bool) (*pipeline.Pipeline, error) {
	// 1. 一覧ソース
	var source pipeline.ListingSource
	switch scrapeFlags.source {
	case sourceHTML:
		lf, err := listing.NewFetcher(fetcher)
		if err != nil {
			return nil, err
		}
		source = lf
	case sourceFeed:
		source = feed.NewParser(fetcher)
	default:
		return nil, fmt.Errorf("不明なソースです: %q (html または feed を指定してください)", scrapeFlags.source)
	}

	// 2. 本文の取得 (1件ずつ、間隔を空けて)
	var opts []extract.Option
	if appConfig.BodySelector != "" {
		opts = append(opts, extract.WithBodySelector(appConfig.BodySelector))
	}
	extractor, err := extract.NewExtractor(fetcher, opts...)
	if err != nil {
		return nil, fmt.Errorf("Extractorの初期化エラー: %w", err)
	}
	delay := appConfig.RequestDelay
	if scrapeFlags.delay >= 0 {
		delay = scrapeFlags.delay
	}
	collector, err := scraper.New(extractor, scraper.WithDelay(delay), scraper.WithVerbose(verbose))
	if err != nil {
		return nil, err
	}

	// 3. 派生属性
	enricher, err := enrich.NewEnricher(sentiment.NewAnalyzer(), enrich.NewLinguaDetector(), enrich.EnglishStopwords())
	if err != nil {
		return nil, err
	}

	return pipeline.New(source, collector, enricher, writer, verbose)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "最新記事一覧を取得し、本文・単語数・感情・言語を付与してデータベースに保存します",
	Long: `一覧ページ (既定: https://dev.to/latest) または RSS フィードから記事を集め、
各記事の本文を1件ずつ取得して派生属性を計算し、articles テーブルに保存します。
既に保存済みのリンクはスキップされます。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}

		// 1. 対象URLの決定 (フラグ > 設定)
		target := scrapeFlags.url
		if target == "" {
			target = appConfig.ListingURL
			if scrapeFlags.source == sourceFeed {
				target = appConfig.FeedURL
			}
		}
		target, err := ensureScheme(target)
		if err != nil {
			return err
		}

		// 2. 全体処理のコンテキストを設定
		ctx, cancel := context.WithTimeout(cmd.Context(), scrapeFlags.timeout)
		defer cancel()

		// 3. データベース接続 (必ず解放)
		repo, err := openRepository(ctx)
		if err != nil {
			return err
		}
		defer repo.Close()

		// 4. パイプラインの組み立てと実行
		p, err := newScrapePipeline(fetcher, repo, clibase.Flags.Verbose)
		if err != nil {
			return err
		}

		log.Printf("スクレイピング開始 (ソース: %s, URL: %s, 全体タイムアウト: %s)", scrapeFlags.source, target, scrapeFlags.timeout)
		res, err := p.Run(ctx, target)
		if err != nil {
			return fmt.Errorf("パイプラインの実行エラー: %w", err)
		}

		fmt.Printf("完了: 一覧 %d 件, 対象 %d 件, 本文取得 %d 件, 新規保存 %d 件\n",
			res.Listed, res.Retained, res.Fetched, res.Inserted)
		return nil
	},
}

func init() {
	scrapeCmd.Flags().StringVarP(&scrapeFlags.source, "source", "s", sourceHTML, "一覧の取得元 (html または feed)")
	scrapeCmd.Flags().StringVarP(&scrapeFlags.url, "url", "u", "", "一覧ページまたはフィードのURL (省略時は LISTING_URL / FEED_URL)")
	scrapeCmd.Flags().DurationVar(&scrapeFlags.delay, "delay", -1, "記事取得の間隔 (負の値なら REQUEST_DELAY を使用)")
	scrapeCmd.Flags().DurationVar(&scrapeFlags.timeout, "overall-timeout", defaultScrapeTimeout, "スクレイピング全体のタイムアウト")
}
