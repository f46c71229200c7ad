package enrich

import (
	"strings"

	"github.com/pemistahl/lingua-go"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// UndeterminedCode は言語を判定できなかった場合のコードです (BCP 47 の "und")。
const UndeterminedCode = "und"

// Detector はテキストの言語を ISO 639-1 の2文字コードで返します。
type Detector interface {
	Detect(text string) string
}

// DefaultLanguages は技術ブログで出現しやすい言語の候補です。
var DefaultLanguages = []lingua.Language{
	lingua.English, lingua.Spanish, lingua.Portuguese, lingua.French, lingua.German,
	lingua.Italian, lingua.Dutch, lingua.Russian, lingua.Ukrainian, lingua.Polish,
	lingua.Turkish, lingua.Indonesian, lingua.Vietnamese, lingua.Japanese, lingua.Korean,
	lingua.Chinese, lingua.Hindi, lingua.Arabic,
}

// LinguaDetector は lingua-go による Detector の実装です。
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector は指定した候補言語で検出器を構築します。候補が無い場合は DefaultLanguages を使います。
func NewLinguaDetector(languages ...lingua.Language) *LinguaDetector {
	if len(languages) < 2 {
		languages = DefaultLanguages
	}
	return &LinguaDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Detect は言語コードを返します。判定できなければ UndeterminedCode です。
func (d *LinguaDetector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return UndeterminedCode
	}
	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return UndeterminedCode
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}

// LanguageName は言語コードを英語の表示名に変換します。解決できなければコードをそのまま返します。
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}
