package httpclient

import (
	"context"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

const (
	// HTTPクライアント関連の定数
	DefaultHTTPTimeout = 30 * time.Second
	DefaultMaxRetries  = 2
)

// DefaultUserAgents は、リクエストごとにランダムに選ばれるブラウザの User-Agent 一覧です。
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:124.0) Gecko/20100101 Firefox/124.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.2478.51",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
}

// Doer は、標準の *http.Client.Do() と互換性のあるHTTPクライアントのインターフェースです。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher は、URLから生のバイト配列を取得する機能のインターフェースです。
// *httpkit.Client はこのインターフェースを満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// RotatingDoer は、リクエストごとにランダムな User-Agent を設定してから内部の Doer に委譲します。
type RotatingDoer struct {
	next   Doer
	agents []string
	pick   func(n int) int
}

// NewRotatingDoer は RotatingDoer を生成します。agents が空の場合は DefaultUserAgents を使用します。
func NewRotatingDoer(next Doer, agents []string) *RotatingDoer {
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	return &RotatingDoer{
		next:   next,
		agents: agents,
		pick:   rand.IntN,
	}
}

// RandomUserAgent はプールから User-Agent を1つ選びます。
func (d *RotatingDoer) RandomUserAgent() string {
	return d.agents[d.pick(len(d.agents))]
}

// Do は Doer インターフェースを満たします。元のリクエストは変更しません。
func (d *RotatingDoer) Do(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	cloned.Header.Set("User-Agent", d.RandomUserAgent())
	return d.next.Do(cloned)
}

// New は、User-Agent をローテーションする httpkit.Client を生成します。
// タイムアウトとリトライ (5xx・ネットワークエラー) は httpkit が処理します。
func New(timeout time.Duration, maxRetries uint64) *httpkit.Client {
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	doer := NewRotatingDoer(&http.Client{Timeout: timeout}, nil)

	return httpkit.New(
		timeout,
		httpkit.WithMaxRetries(maxRetries),
		httpkit.WithHTTPClient(doer),
	)
}
