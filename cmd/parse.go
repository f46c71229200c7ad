package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/blog-insights/pkg/feed"
	"github.com/shouni/blog-insights/pkg/types"
)

// フィードURLを保持するフラグ変数
var feedURL string

// フィードの全体処理のタイムアウト設定
// Flags.TimeoutSec はHTTPクライアントのタイムアウト秒数を表します。
const overallFeedTimeoutFactor = 2 // クライアントタイムアウトの2倍

// runParsePipeline は、フィードを取得して記事要約に変換します。
func runParsePipeline(url string, parser *feed.Parser, overallTimeout time.Duration) ([]types.ArticleSummary, error) {
	ctx, cancel := context.WithTimeout(context.Background(), overallTimeout)
	defer cancel()

	summaries, err := parser.FetchListing(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得およびパースエラー (URL: %s): %w", url, err)
	}
	return summaries, nil
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "RSS/Atomフィードを取得し、scrape が扱う記事要約として一覧表示します",
	Long:  `指定されたURL (省略時は FEED_URL) からフィードを取得し、各記事のタイトル・URL・著者・タグ・公開日を表示します。データベースには保存しません。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		overallTimeout := time.Duration(Flags.TimeoutSec) * overallFeedTimeoutFactor * time.Second
		if Flags.TimeoutSec == 0 {
			overallTimeout = DefaultOverallTimeout
		}

		target := feedURL
		if target == "" {
			target = appConfig.FeedURL
		}
		target, err := ensureScheme(target)
		if err != nil {
			return err
		}
		log.Printf("処理対象フィードURL: %s (全体タイムアウト: %s)", target, overallTimeout)

		// 1. 依存性の初期化
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントの取得に失敗しました")
		}
		parser := feed.NewParser(fetcher)

		// 2. メインロジックの実行
		summaries, err := runParsePipeline(target, parser, overallTimeout)
		if err != nil {
			return fmt.Errorf("フィード解析パイプラインの実行エラー: %w", err)
		}

		// 3. 結果の出力
		fmt.Printf("--- フィード解析結果 (%d 件) ---\n", len(summaries))
		for i, s := range summaries {
			fmt.Printf("[%d] %s\n", i+1, types.Deref(s.Title))
			fmt.Printf("    URL: %s\n", s.Link)
			if s.Author != nil {
				fmt.Printf("    著者: %s\n", *s.Author)
			}
			if s.Tags != nil {
				fmt.Printf("    タグ: %s\n", *s.Tags)
			}
			if s.TimeUploaded != nil {
				fmt.Printf("    公開日: %s\n", *s.TimeUploaded)
			}
		}
		fmt.Println()
		return nil
	},
}

func init() {
	parseCmd.Flags().StringVarP(&feedURL, "url", "u", "", "解析対象のフィード (RSS/Atom) URL")
}
