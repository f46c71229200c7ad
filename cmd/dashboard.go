package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shouni/blog-insights/pkg/dashboard"
	"github.com/shouni/blog-insights/pkg/types"
)

var dashboardFlags struct {
	author     string
	sentiments []string
	tags       []string
	from       string
	to         string
	minWords   int
	maxWords   int
	minReading int
	maxReading int
}

// buildFilter はフラグから絞り込み条件を作ります。負の範囲値は「指定なし」です。
func buildFilter() (dashboard.Filter, error) {
	var f dashboard.Filter

	if dashboardFlags.author != "" {
		f.Author = types.StringPtr(dashboardFlags.author)
	}
	for _, s := range dashboardFlags.sentiments {
		sentiment := types.Sentiment(s)
		switch sentiment {
		case types.Positive, types.Neutral, types.Negative:
			f.Sentiments = append(f.Sentiments, sentiment)
		default:
			return f, fmt.Errorf("不明な感情ラベルです: %q", s)
		}
	}
	f.Tags = dashboardFlags.tags

	var err error
	if f.From, err = parseDay(dashboardFlags.from); err != nil {
		return f, err
	}
	if f.To, err = parseDay(dashboardFlags.to); err != nil {
		return f, err
	}

	f.MinWords = optionalInt(dashboardFlags.minWords)
	f.MaxWords = optionalInt(dashboardFlags.maxWords)
	f.MinReading = optionalInt(dashboardFlags.minReading)
	f.MaxReading = optionalInt(dashboardFlags.maxReading)
	return f, nil
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("日付は YYYY-MM-DD 形式で指定してください: %q", s)
	}
	return &t, nil
}

func optionalInt(v int) *int {
	if v < 0 {
		return nil
	}
	return &v
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "保存済みの記事を絞り込み、集計レポートをターミナルに表示します",
	Long: `articles テーブルを全件読み込み、指定された条件 (著者・感情・タグ・期間・単語数・読了時間) で
絞り込んだうえで、感情分布・読了時間・頻出タグ・投稿時間帯などの集計と記事一覧を表示します。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		// 1. 条件の解釈
		filter, err := buildFilter()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), DefaultOverallTimeout)
		defer cancel()

		// 2. 全件読み込み
		repo, err := openRepository(ctx)
		if err != nil {
			return err
		}
		defer repo.Close()

		articles, err := repo.LoadAll(ctx)
		if err != nil {
			return err
		}

		// 3. 正規化・絞り込み・集計・出力
		view := dashboard.Build(dashboard.Normalize(articles), filter)
		return dashboard.RenderReport(os.Stdout, view)
	},
}

func init() {
	f := dashboardCmd.Flags()
	f.StringVar(&dashboardFlags.author, "author", "", "著者名 (完全一致)")
	f.StringSliceVar(&dashboardFlags.sentiments, "sentiment", nil, "感情ラベル (Positive, Neutral, Negative。複数指定可)")
	f.StringSliceVar(&dashboardFlags.tags, "tag", nil, "タグ (いずれかに一致。複数指定可)")
	f.StringVar(&dashboardFlags.from, "from", "", "投稿日の開始 (YYYY-MM-DD, UTC, この日を含む)")
	f.StringVar(&dashboardFlags.to, "to", "", "投稿日の終了 (YYYY-MM-DD, UTC, この日を含む)")
	f.IntVar(&dashboardFlags.minWords, "min-words", -1, "単語数の下限")
	f.IntVar(&dashboardFlags.maxWords, "max-words", -1, "単語数の上限")
	f.IntVar(&dashboardFlags.minReading, "min-reading", -1, "読了時間 (分) の下限")
	f.IntVar(&dashboardFlags.maxReading, "max-reading", -1, "読了時間 (分) の上限")
}
