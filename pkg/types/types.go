package types

import (
	"strings"
	"time"
)

// Sentiment は記事本文の感情ラベルです。
type Sentiment string

const (
	Positive Sentiment = "Positive"
	Neutral  Sentiment = "Neutral"
	Negative Sentiment = "Negative"
)

// AllSentiments はダッシュボードの選択肢に使う表示順です。
var AllSentiments = []Sentiment{Positive, Neutral, Negative}

// ArticleSummary は一覧ページの1カード分の要約情報です。
// 要素が見つからなかったフィールドは nil になります (フィールド単位の欠損)。
// Link が空文字列の行は下流処理の前に除外されます。
type ArticleSummary struct {
	Link         string
	Title        *string
	TimeUploaded *string // datetime 属性の生の ISO-8601 文字列
	Author       *string
	Tags         *string // '#' 区切りのタグを含む生テキスト
	ReadingTime  *string // "<N> min read"
}

// ArticleContent は記事ページから抽出した本文です。
type ArticleContent struct {
	Link           string
	ArticleContent string
}

// EnrichedArticle は要約と本文を Link で内部結合し、派生フィールドを加えたレコードです。
// articles テーブルの1行に対応します。
type EnrichedArticle struct {
	Link           string
	Title          *string
	TimeUploaded   *time.Time
	Author         *string
	Tags           *string
	ReadingTime    *int
	ArticleContent string
	WordCount      int
	Sentiment      Sentiment
	CompoundScore  float64
	Language       string
}

// TagSet は生のタグ文字列を '#' で分割し、空要素を除いたタグ一覧を返します。
func (a EnrichedArticle) TagSet() []string {
	if a.Tags == nil {
		return nil
	}
	return SplitTags(*a.Tags)
}

// SplitTags は "#go #rust" のようなタグ文字列を ["go", "rust"] に分割します。
func SplitTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, "#") {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// StringPtr は文字列のポインタを返すヘルパーです。
func StringPtr(s string) *string {
	return &s
}

// Deref は nil の場合に空文字列を返します。
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
