// Package server はダッシュボードを HTTP (echo) で公開します。
// リクエストごとに articles テーブルを読み直し、クエリパラメーターで絞り込みます。
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/shouni/blog-insights/pkg/dashboard"
	"github.com/shouni/blog-insights/pkg/types"
)

const (
	dateLayout      = time.DateOnly
	shutdownTimeout = 10 * time.Second
)

// Loader は保存済み記事を全件返します。*store.Repository がこれを満たします。
type Loader interface {
	LoadAll(ctx context.Context) ([]types.EnrichedArticle, error)
}

// Handler はダッシュボードのハンドラー群です。
type Handler struct {
	loader Loader
}

// NewHandler は Handler を生成します。
func NewHandler(loader Loader) (*Handler, error) {
	if loader == nil {
		return nil, fmt.Errorf("server.NewHandler: Loader cannot be nil")
	}
	return &Handler{loader: loader}, nil
}

// New はルーティングとミドルウェアを設定した echo インスタンスを返します。
func New(h *Handler, verbose bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if verbose {
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogStatus:  true,
			LogURI:     true,
			LogMethod:  true,
			LogLatency: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				log.Printf("%s %s %d (%dms)", v.Method, v.URI, v.Status, v.Latency.Milliseconds())
				return nil
			},
		}))
	}
	e.Use(middleware.Recover())

	e.GET("/", h.Page)
	e.GET("/api/articles", h.Articles)
	e.GET("/api/stats", h.Stats)
	e.GET("/api/options", h.Options)
	e.GET("/healthz", h.Health)
	return e
}

// Run は addr で待ち受け、ctx がキャンセルされたらグレースフルにシャットダウンします。
func Run(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("ダッシュボードを起動します: http://%s", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("サーバーの起動に失敗しました: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("サーバーの停止に失敗しました: %w", err)
	}
	log.Println("ダッシュボードを停止しました")
	return nil
}

// Articles は絞り込み後の記事一覧を返します。
// GET /api/articles
func (h *Handler) Articles(c echo.Context) error {
	view, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.Rows)
}

// Stats は絞り込み後の集計を返します。
// GET /api/stats
func (h *Handler) Stats(c echo.Context) error {
	view, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.Stats)
}

// Options はフィルターの選択肢を全件から返します。
// GET /api/options
func (h *Handler) Options(c echo.Context) error {
	rows, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboard.BuildOptions(rows))
}

// Page は絞り込みフォームと集計・記事一覧を HTML で返します。
// フォームの選択肢は絞り込み前の全件から作ります。
// GET /
func (h *Handler) Page(c echo.Context) error {
	filter, err := ParseFilter(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rows, err := h.load(c)
	if err != nil {
		return err
	}
	return renderPage(c, pageData{
		View:    dashboard.Build(rows, filter),
		Options: dashboard.BuildOptions(rows),
		Query:   c.QueryParams(),
	})
}

// Health は死活監視用です。
// GET /healthz
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) load(c echo.Context) ([]dashboard.Row, error) {
	articles, err := h.loader.LoadAll(c.Request().Context())
	if err != nil {
		log.Printf("記事の読み込みに失敗しました: %v", err)
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to load articles")
	}
	return dashboard.Normalize(articles), nil
}

// view は読み込み・絞り込み・集計を行います。
func (h *Handler) view(c echo.Context) (dashboard.View, error) {
	filter, err := ParseFilter(c)
	if err != nil {
		return dashboard.View{}, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rows, err := h.load(c)
	if err != nil {
		return dashboard.View{}, err
	}
	return dashboard.Build(rows, filter), nil
}

// ParseFilter はクエリパラメーターから絞り込み条件を作ります。
//
//	author=Jane&sentiment=Positive&sentiment=Neutral&tag=go&from=2024-05-01&to=2024-05-31
//	&min_words=10&max_words=500&min_reading=1&max_reading=10
func ParseFilter(c echo.Context) (dashboard.Filter, error) {
	var f dashboard.Filter
	q := c.QueryParams()

	if author := q.Get("author"); author != "" {
		f.Author = types.StringPtr(author)
	}
	for _, s := range q["sentiment"] {
		sentiment := types.Sentiment(s)
		if !validSentiment(sentiment) {
			return f, fmt.Errorf("invalid sentiment: %q", s)
		}
		f.Sentiments = append(f.Sentiments, sentiment)
	}
	for _, t := range q["tag"] {
		if t != "" {
			f.Tags = append(f.Tags, t)
		}
	}

	var err error
	if f.From, err = parseDate(q.Get("from")); err != nil {
		return f, err
	}
	if f.To, err = parseDate(q.Get("to")); err != nil {
		return f, err
	}

	ints := []struct {
		key string
		dst **int
	}{
		{"min_words", &f.MinWords},
		{"max_words", &f.MaxWords},
		{"min_reading", &f.MinReading},
		{"max_reading", &f.MaxReading},
	}
	for _, p := range ints {
		if *p.dst, err = parseInt(p.key, q.Get(p.key)); err != nil {
			return f, err
		}
	}
	return f, nil
}

func validSentiment(s types.Sentiment) bool {
	for _, v := range types.AllSentiments {
		if v == s {
			return true
		}
	}
	return false
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return &t, nil
}

func parseInt(key, s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", key, s)
	}
	return &v, nil
}
