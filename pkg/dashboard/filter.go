package dashboard

import (
	"time"

	"github.com/shouni/blog-insights/pkg/types"
)

// Filter はダッシュボードの絞り込み条件です。すべての条件は AND で結合されます。
// nil または空の条件は「すべて」を意味します。
type Filter struct {
	Author     *string
	Sentiments []types.Sentiment
	Tags       []string
	From       *time.Time // この日 (UTC) を含む
	To         *time.Time // この日 (UTC) の終わりまでを含む
	MinWords   *int
	MaxWords   *int
	MinReading *int
	MaxReading *int
}

// Apply は条件をすべて満たす行を元の順序のまま返します。
func (f Filter) Apply(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Match は1行が条件をすべて満たすかどうかを返します。
func (f Filter) Match(r Row) bool {
	if f.Author != nil && r.Author != *f.Author {
		return false
	}
	if len(f.Sentiments) > 0 && !containsSentiment(f.Sentiments, r.Sentiment) {
		return false
	}
	if len(f.Tags) > 0 && !anyTag(f.Tags, r.Tags) {
		return false
	}
	if !f.matchDate(r.TimeUploaded) {
		return false
	}
	if !inRange(r.WordCount, f.MinWords, f.MaxWords) {
		return false
	}
	return inRange(r.ReadingTime, f.MinReading, f.MaxReading)
}

// matchDate は暦日単位 (UTC) の閉区間で判定します。日付条件があるとき、投稿日時のない行は除外されます。
func (f Filter) matchDate(ts *time.Time) bool {
	if f.From == nil && f.To == nil {
		return true
	}
	if ts == nil {
		return false
	}
	day := truncateDay(*ts)
	if f.From != nil && day.Before(truncateDay(*f.From)) {
		return false
	}
	if f.To != nil && day.After(truncateDay(*f.To)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func inRange(v int, lo, hi *int) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

func containsSentiment(set []types.Sentiment, s types.Sentiment) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// anyTag はタグをトークン単位の完全一致で比較します。
func anyTag(selected, tags []string) bool {
	for _, want := range selected {
		for _, have := range tags {
			if want == have {
				return true
			}
		}
	}
	return false
}
