package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/blog-insights/pkg/extract"
	"github.com/shouni/blog-insights/pkg/types"
)

var extractFlags struct {
	url      string
	selector string
}

// runExtraction は1件の記事ページから本文を取得します。
func runExtraction(rawURL string, extractor *extract.Extractor, overallTimeout time.Duration) (types.ArticleContent, error) {
	// 1. 全体処理のコンテキストを設定
	ctx, cancel := context.WithTimeout(context.Background(), overallTimeout)
	defer cancel()

	// 2. 抽出の実行
	content, err := extractor.FetchContent(ctx, rawURL)
	if err != nil {
		return types.ArticleContent{}, fmt.Errorf("コンテンツ抽出エラー (URL: %s): %w", rawURL, err)
	}
	return content, nil
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "記事ページ1件の本文を抽出して表示します (保存はしません)",
	Long:  `scrape と同じ規則 (本文コンテナ内の段落からリンクを除去し、空白1つで結合) で1件の記事本文を取得し、標準出力に表示します。セレクターの確認に使います。`,
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		overallTimeout := time.Duration(Flags.TimeoutSec) * 2 * time.Second
		if Flags.TimeoutSec == 0 {
			overallTimeout = DefaultOverallTimeout
		}

		// 1. URLのスキーム補完とバリデーション
		processedURL, err := ensureScheme(extractFlags.url)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}
		log.Printf("処理対象URL: %s (全体タイムアウト: %s)\n", processedURL, overallTimeout)

		// 2. 依存性の初期化
		fetcher := GetGlobalFetcher()
		if fetcher == nil {
			return fmt.Errorf("HTTPクライアントが初期化されていません")
		}
		selector := extractFlags.selector
		if selector == "" {
			selector = appConfig.BodySelector
		}
		var opts []extract.Option
		if selector != "" {
			opts = append(opts, extract.WithBodySelector(selector))
		}
		extractor, err := extract.NewExtractor(fetcher, opts...)
		if err != nil {
			return fmt.Errorf("Extractorの初期化エラー: %w", err)
		}

		// 3. 実行と出力
		content, err := runExtraction(processedURL, extractor, overallTimeout)
		if err != nil {
			return err
		}

		fmt.Println("--- 抽出された本文 ---")
		fmt.Println(content.ArticleContent)
		fmt.Println("-----------------------")
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractFlags.url, "url", "u", "", "抽出対象の記事URL")
	extractCmd.Flags().StringVar(&extractFlags.selector, "selector", "", "本文コンテナのCSSセレクター (省略時は BODY_SELECTOR または既定値)")
	_ = extractCmd.MarkFlagRequired("url")
}
