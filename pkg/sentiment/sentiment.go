// Package sentiment は VADER 辞書による感情スコアリングと3値ラベルへの振り分けを提供します。
package sentiment

import (
	"math"

	"github.com/jonreiter/govader"

	"github.com/shouni/blog-insights/pkg/types"
)

const (
	// PositiveThreshold 以上で Positive、NegativeThreshold 以下で Negative
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05

	// compound は小数点以下4桁に丸める
	compoundPrecision = 1e4
)

// Scores は1テキスト分の極性スコアです。
type Scores struct {
	Negative float64
	Neutral  float64
	Positive float64
	Compound float64
}

// Analyzer は VADER 辞書を読み込み済みのスコアラーです。
// 生成後は読み取り専用のため、複数の goroutine から共有できます。
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

// NewAnalyzer は辞書と絵文字表を読み込んだ Analyzer を返します。
func NewAnalyzer() *Analyzer {
	return &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// Classify は compound スコアを3値ラベルに振り分けます。
func Classify(compound float64) types.Sentiment {
	switch {
	case compound >= PositiveThreshold:
		return types.Positive
	case compound <= NegativeThreshold:
		return types.Negative
	default:
		return types.Neutral
	}
}

// PolarityScores はテキスト全体の極性スコアを計算します。
func (a *Analyzer) PolarityScores(text string) Scores {
	s := a.vader.PolarityScores(text)
	return Scores{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: math.Round(s.Compound*compoundPrecision) / compoundPrecision,
	}
}
