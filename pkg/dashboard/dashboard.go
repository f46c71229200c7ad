// Package dashboard は保存済み記事の正規化・絞り込み・集計とテキストレポートの出力を担当します。
package dashboard

import (
	"time"

	"github.com/shouni/blog-insights/pkg/types"
)

// Row はダッシュボード表示用に正規化した記事です。
// 単語数と読了時間の欠損は 0、投稿日時は UTC に揃えます。
type Row struct {
	Link           string          `json:"link"`
	Title          string          `json:"title"`
	Author         string          `json:"author"`
	TimeUploaded   *time.Time      `json:"time_uploaded,omitempty"`
	Tags           []string        `json:"tags"`
	ReadingTime    int             `json:"reading_time"`
	ArticleContent string          `json:"article_content"`
	WordCount      int             `json:"word_count"`
	Sentiment      types.Sentiment `json:"sentiment"`
	CompoundScore  float64         `json:"compound_score"`
	Language       string          `json:"language"`
}

// View は絞り込み後の行とそこから導出した集計のまとまりです。
type View struct {
	Rows  []Row `json:"rows"`
	Stats Stats `json:"stats"`
}

// Normalize はテーブルの全行を表示用の Row に変換します。
func Normalize(articles []types.EnrichedArticle) []Row {
	rows := make([]Row, 0, len(articles))
	for _, a := range articles {
		row := Row{
			Link:           a.Link,
			Title:          types.Deref(a.Title),
			Author:         types.Deref(a.Author),
			Tags:           a.TagSet(),
			ArticleContent: a.ArticleContent,
			WordCount:      a.WordCount,
			Sentiment:      a.Sentiment,
			CompoundScore:  a.CompoundScore,
			Language:       a.Language,
		}
		if row.Tags == nil {
			row.Tags = []string{}
		}
		if a.ReadingTime != nil {
			row.ReadingTime = *a.ReadingTime
		}
		if a.TimeUploaded != nil {
			ts := a.TimeUploaded.UTC()
			row.TimeUploaded = &ts
		}
		rows = append(rows, row)
	}
	return rows
}

// Build は絞り込みと集計をまとめて行います。
func Build(rows []Row, f Filter) View {
	filtered := f.Apply(rows)
	return View{Rows: filtered, Stats: Summarize(filtered)}
}
