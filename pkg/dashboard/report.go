package dashboard

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// contentPreviewRunes は記事一覧で表示する本文の最大文字数です。
const contentPreviewRunes = 80

// RenderReport は View をターミナル向けのテキストレポートとして書き出します。
func RenderReport(w io.Writer, view View) error {
	s := view.Stats

	if _, err := fmt.Fprintf(w, "Articles: %d\nAverage word count: %.1f\nAverage reading time: %.1f min\n",
		s.Total, s.AverageWordCount, s.AverageReadingTime); err != nil {
		return err
	}

	sections := []struct {
		title   string
		headers []string
		rows    [][]string
	}{
		{"Sentiment distribution", []string{"Sentiment", "Count"}, countRows(s.SentimentCounts)},
		{"Reading time (min)", []string{"Range", "Count"}, binRows(s.ReadingTimeHistogram)},
		{"Top tags", []string{"Tag", "Count"}, countRows(s.TopTags)},
		{"Word count by sentiment", []string{"Sentiment", "N", "Min", "Q1", "Median", "Q3", "Max"}, boxRows(s.WordCountBySentiment)},
		{"Upload hour (UTC)", []string{"Hour", "Count"}, hourRows(s.UploadHours)},
		{"Top words", []string{"Word", "Count"}, countRows(s.TopWords)},
		{"Articles", []string{"Title", "Author", "Uploaded", "Tags", "Sentiment", "Content"}, articleRows(view.Rows)},
	}

	for _, sec := range sections {
		if _, err := fmt.Fprintf(w, "\n== %s ==\n", sec.title); err != nil {
			return err
		}
		if len(sec.rows) == 0 {
			if _, err := fmt.Fprintln(w, "(no data)"); err != nil {
				return err
			}
			continue
		}
		if err := renderTable(w, sec.headers, sec.rows); err != nil {
			return fmt.Errorf("%s の出力に失敗しました: %w", sec.title, err)
		}
	}
	return nil
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header(headers)
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func countRows(counts []Count) [][]string {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Label, strconv.Itoa(c.Count)})
	}
	return rows
}

func binRows(bins []Bin) [][]string {
	rows := make([][]string, 0, len(bins))
	for _, b := range bins {
		rows = append(rows, []string{fmt.Sprintf("%.1f-%.1f", b.Lower, b.Upper), strconv.Itoa(b.Count)})
	}
	return rows
}

func boxRows(boxes []BoxStats) [][]string {
	rows := make([][]string, 0, len(boxes))
	for _, b := range boxes {
		rows = append(rows, []string{
			string(b.Sentiment), strconv.Itoa(b.N),
			formatFloat(b.Min), formatFloat(b.Q1), formatFloat(b.Median), formatFloat(b.Q3), formatFloat(b.Max),
		})
	}
	return rows
}

func hourRows(hours [24]int) [][]string {
	var rows [][]string
	for h, c := range hours {
		if c == 0 {
			continue
		}
		rows = append(rows, []string{fmt.Sprintf("%02d", h), strconv.Itoa(c)})
	}
	return rows
}

func articleRows(articles []Row) [][]string {
	rows := make([][]string, 0, len(articles))
	for _, a := range articles {
		uploaded := ""
		if a.TimeUploaded != nil {
			uploaded = a.TimeUploaded.Format(time.DateTime)
		}
		rows = append(rows, []string{
			a.Title, a.Author, uploaded, strings.Join(a.Tags, " "), string(a.Sentiment), preview(a.ArticleContent),
		})
	}
	return rows
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= contentPreviewRunes {
		return s
	}
	return string(r[:contentPreviewRunes]) + "..."
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
