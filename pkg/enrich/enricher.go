// Package enrich は記事ごとに単語数・感情・言語などの派生フィールドを計算します。
package enrich

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shouni/blog-insights/pkg/sentiment"
	"github.com/shouni/blog-insights/pkg/types"
)

const readingTimeSuffix = " min read"

// Enricher は派生フィールドの計算に必要なリソースをまとめて保持します。
type Enricher struct {
	stopwords Stopwords
	analyzer  *sentiment.Analyzer
	detector  Detector
}

// NewEnricher は Enricher を生成します。stopwords が nil の場合は英語の一覧を使います。
func NewEnricher(analyzer *sentiment.Analyzer, detector Detector, stopwords Stopwords) (*Enricher, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("enrich.NewEnricher: Analyzer cannot be nil")
	}
	if detector == nil {
		return nil, fmt.Errorf("enrich.NewEnricher: Detector cannot be nil")
	}
	if stopwords == nil {
		stopwords = EnglishStopwords()
	}
	return &Enricher{
		stopwords: stopwords,
		analyzer:  analyzer,
		detector:  detector,
	}, nil
}

// Enrich は要約と本文を1件の EnrichedArticle にまとめます。失敗しません。
func (e *Enricher) Enrich(summary types.ArticleSummary, content types.ArticleContent) types.EnrichedArticle {
	scores := e.analyzer.PolarityScores(content.ArticleContent)

	article := types.EnrichedArticle{
		Link:           summary.Link,
		Title:          summary.Title,
		Author:         summary.Author,
		Tags:           summary.Tags,
		ArticleContent: content.ArticleContent,
		WordCount:      CountWords(content.ArticleContent, e.stopwords),
		Sentiment:      sentiment.Classify(scores.Compound),
		CompoundScore:  scores.Compound,
		Language:       LanguageName(e.detector.Detect(content.ArticleContent)),
	}

	if summary.TimeUploaded != nil {
		if ts, err := ParseTimestamp(*summary.TimeUploaded); err == nil {
			article.TimeUploaded = &ts
		} else {
			log.Printf("⚠️ 投稿日時を解釈できません (URL: %s): %v", summary.Link, err)
		}
	}

	if summary.ReadingTime != nil {
		if minutes, err := ParseReadingTime(*summary.ReadingTime); err == nil {
			article.ReadingTime = &minutes
		} else {
			log.Printf("⚠️ 読了時間を解釈できません (URL: %s): %v", summary.Link, err)
		}
	}

	return article
}

// EnrichAll は要約と本文を Link で内部結合し、要約の順序で派生フィールドを計算します。
func (e *Enricher) EnrichAll(summaries []types.ArticleSummary, contents []types.ArticleContent) []types.EnrichedArticle {
	byLink := make(map[string]types.ArticleContent, len(contents))
	for _, c := range contents {
		byLink[c.Link] = c
	}

	enriched := make([]types.EnrichedArticle, 0, len(contents))
	for _, s := range summaries {
		c, ok := byLink[s.Link]
		if !ok {
			continue
		}
		enriched = append(enriched, e.Enrich(s, c))
	}
	return enriched
}

// ParseReadingTime は "7 min read" 形式の文字列を分数に変換します。
func ParseReadingTime(s string) (int, error) {
	trimmed := strings.TrimSpace(strings.Replace(s, readingTimeSuffix, "", 1))
	minutes, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("読了時間の形式が不正です: %q: %w", s, err)
	}
	return minutes, nil
}

// ParseTimestamp は ISO-8601 (RFC 3339) の投稿日時を UTC の time.Time に変換します。
func ParseTimestamp(s string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
