package enrich

import (
	_ "embed"
	"strings"
	"unicode"
)

//go:embed stopwords_en.txt
var englishStopwordData string

// Stopwords は小文字化済みのストップワード集合です。
type Stopwords map[string]struct{}

// EnglishStopwords は NLTK の英語ストップワード一覧を返します。
func EnglishStopwords() Stopwords {
	return NewStopwords(strings.Fields(englishStopwordData))
}

// NewStopwords は単語一覧から集合を生成します。
func NewStopwords(words []string) Stopwords {
	set := make(Stopwords, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// Contains は大文字小文字を区別せずに判定します。
func (s Stopwords) Contains(word string) bool {
	_, ok := s[strings.ToLower(word)]
	return ok
}

// Tokenize は空白で分割し、前後の記号を落とした単語を返します。記号だけのトークンは捨てます。
// 戻り値の件数は空白区切りのトークン数を超えません。
func Tokenize(text string) []string {
	fields := strings.Fields(text)
	words := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}

// CountWords はストップワードを除いた単語数を返します。空の入力は 0 です。
func CountWords(text string, stopwords Stopwords) int {
	count := 0
	for _, word := range Tokenize(text) {
		if !stopwords.Contains(word) {
			count++
		}
	}
	return count
}
