package dashboard

import (
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/shouni/blog-insights/pkg/enrich"
	"github.com/shouni/blog-insights/pkg/types"
)

const (
	HistogramBins = 10
	TopTagsLimit  = 10
	TopWordsLimit = 30
)

// Count はラベルと件数の組です。
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Bin はヒストグラムの1区間 [Lower, Upper) です。最後の区間だけ Upper を含みます。
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// BoxStats は箱ひげ図用の五数要約です。
type BoxStats struct {
	Sentiment types.Sentiment `json:"sentiment"`
	N         int             `json:"n"`
	Min       float64         `json:"min"`
	Q1        float64         `json:"q1"`
	Median    float64         `json:"median"`
	Q3        float64         `json:"q3"`
	Max       float64         `json:"max"`
}

// Stats は絞り込み後の行から導出したすべての集計値です。
type Stats struct {
	Total                int        `json:"total"`
	SentimentCounts      []Count    `json:"sentiment_counts"`
	ReadingTimeHistogram []Bin      `json:"reading_time_histogram"`
	TopTags              []Count    `json:"top_tags"`
	WordCountBySentiment []BoxStats `json:"word_count_by_sentiment"`
	UploadHours          [24]int    `json:"upload_hours"`
	TopWords             []Count    `json:"top_words"`
	AverageWordCount     float64    `json:"average_word_count"`
	AverageReadingTime   float64    `json:"average_reading_time"`
}

// Options はフィルター UI の選択肢です。絞り込み前の全行から作ります。
type Options struct {
	Authors    []string          `json:"authors"`
	Sentiments []types.Sentiment `json:"sentiments"`
	Tags       []string          `json:"tags"`
	MinDate    *time.Time        `json:"min_date,omitempty"`
	MaxDate    *time.Time        `json:"max_date,omitempty"`
	MinWords   int               `json:"min_words"`
	MaxWords   int               `json:"max_words"`
	MinReading int               `json:"min_reading"`
	MaxReading int               `json:"max_reading"`
}

// Summarize は行の集合から各グラフ用の集計を計算します。
func Summarize(rows []Row) Stats {
	stats := Stats{
		Total:                len(rows),
		SentimentCounts:      sentimentCounts(rows),
		ReadingTimeHistogram: readingHistogram(rows),
		TopTags:              topTags(rows),
		WordCountBySentiment: wordCountBoxes(rows),
		TopWords:             topWords(rows, enrich.EnglishStopwords()),
	}

	if len(rows) == 0 {
		return stats
	}

	var words, reading int
	for _, r := range rows {
		words += r.WordCount
		reading += r.ReadingTime
		if r.TimeUploaded != nil {
			stats.UploadHours[r.TimeUploaded.UTC().Hour()]++
		}
	}
	stats.AverageWordCount = float64(words) / float64(len(rows))
	stats.AverageReadingTime = float64(reading) / float64(len(rows))
	return stats
}

// BuildOptions は全行から選択肢と範囲の初期値を作ります。
func BuildOptions(rows []Row) Options {
	opts := Options{
		Authors:    []string{},
		Sentiments: types.AllSentiments,
		Tags:       []string{},
	}

	authors := map[string]struct{}{}
	tags := map[string]struct{}{}
	for i, r := range rows {
		if r.Author != "" {
			authors[r.Author] = struct{}{}
		}
		for _, t := range r.Tags {
			tags[t] = struct{}{}
		}

		if i == 0 {
			opts.MinWords, opts.MaxWords = r.WordCount, r.WordCount
			opts.MinReading, opts.MaxReading = r.ReadingTime, r.ReadingTime
		}
		opts.MinWords = min(opts.MinWords, r.WordCount)
		opts.MaxWords = max(opts.MaxWords, r.WordCount)
		opts.MinReading = min(opts.MinReading, r.ReadingTime)
		opts.MaxReading = max(opts.MaxReading, r.ReadingTime)

		if r.TimeUploaded != nil {
			day := truncateDay(*r.TimeUploaded)
			if opts.MinDate == nil || day.Before(*opts.MinDate) {
				opts.MinDate = &day
			}
			if opts.MaxDate == nil || day.After(*opts.MaxDate) {
				d := day
				opts.MaxDate = &d
			}
		}
	}

	opts.Authors = sortedKeys(authors)
	opts.Tags = sortedKeys(tags)
	return opts
}

func sentimentCounts(rows []Row) []Count {
	counts := map[types.Sentiment]int{}
	for _, r := range rows {
		counts[r.Sentiment]++
	}
	out := make([]Count, 0, len(types.AllSentiments))
	for _, s := range types.AllSentiments {
		out = append(out, Count{Label: string(s), Count: counts[s]})
	}
	return out
}

// readingHistogram は最小値から最大値までを等幅の区間に分けます。
// 全行が同じ値の場合は値を中心に幅1の範囲を使います。
func readingHistogram(rows []Row) []Bin {
	if len(rows) == 0 {
		return []Bin{}
	}

	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		values = append(values, float64(r.ReadingTime))
	}
	sort.Float64s(values)

	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	dividers := floats.Span(make([]float64, HistogramBins+1), lo, hi)
	// 最大値を最後の区間に含めるため、上端だけわずかに広げる
	dividers[HistogramBins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, values, nil)

	bins := make([]Bin, HistogramBins)
	for i := range bins {
		bins[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	bins[HistogramBins-1].Upper = hi
	return bins
}

func topTags(rows []Row) []Count {
	counts := map[string]int{}
	for _, r := range rows {
		for _, t := range r.Tags {
			counts[t]++
		}
	}
	return topN(counts, TopTagsLimit)
}

// topWords はワードクラウドの代わりに、本文中の頻出語 (ストップワード除外、小文字化) を返します。
func topWords(rows []Row, stopwords enrich.Stopwords) []Count {
	counts := map[string]int{}
	for _, r := range rows {
		for _, w := range enrich.Tokenize(r.ArticleContent) {
			if stopwords.Contains(w) {
				continue
			}
			counts[strings.ToLower(w)]++
		}
	}
	return topN(counts, TopWordsLimit)
}

func wordCountBoxes(rows []Row) []BoxStats {
	groups := map[types.Sentiment][]float64{}
	for _, r := range rows {
		groups[r.Sentiment] = append(groups[r.Sentiment], float64(r.WordCount))
	}

	out := make([]BoxStats, 0, len(groups))
	for _, s := range types.AllSentiments {
		values, ok := groups[s]
		if !ok {
			continue
		}
		sort.Float64s(values)
		out = append(out, BoxStats{
			Sentiment: s,
			N:         len(values),
			Min:       values[0],
			Q1:        stat.Quantile(0.25, stat.LinInterp, values, nil),
			Median:    stat.Quantile(0.5, stat.LinInterp, values, nil),
			Q3:        stat.Quantile(0.75, stat.LinInterp, values, nil),
			Max:       values[len(values)-1],
		})
	}
	return out
}

// topN は件数の降順、同数ならラベルの昇順で上位 n 件を返します。
func topN(counts map[string]int, n int) []Count {
	out := make([]Count, 0, len(counts))
	for label, c := range counts {
		out = append(out, Count{Label: label, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
