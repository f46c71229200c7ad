package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/spf13/cobra"

	"github.com/shouni/blog-insights/internal/config"
	"github.com/shouni/blog-insights/internal/store"
	"github.com/shouni/blog-insights/pkg/httpclient"
	"github.com/shouni/blog-insights/pkg/retry"
)

// --- グローバル定数 ---

const (
	appName           = "blog-insights"
	defaultTimeoutSec = 30 // 秒
	defaultMaxRetries = 2  // デフォルトのリトライ回数

	// 全体処理のタイムアウト (extract, parse で利用)
	DefaultOverallTimeout = 60 * time.Second
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
type AppFlags struct {
	TimeoutSec int    // --timeout タイムアウト
	MaxRetries int    // --max-retries リトライ回数
	EnvFile    string // --env-file 読み込む .env ファイル
}

var Flags AppFlags

var (
	globalFetcher *httpkit.Client
	appConfig     *config.Config
)

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().IntVar(
		&Flags.TimeoutSec,
		"timeout",
		defaultTimeoutSec,
		"HTTPリクエストのタイムアウト時間（秒）",
	)
	rootCmd.PersistentFlags().IntVar(
		&Flags.MaxRetries,
		"max-retries",
		defaultMaxRetries,
		"HTTPリクエストのリトライ最大回数",
	)
	rootCmd.PersistentFlags().StringVar(
		&Flags.EnvFile,
		"env-file",
		".env",
		"接続情報などを読み込む .env ファイル (存在しなければ無視)",
	)
}

// initAppPreRunE は、clibase共通処理の後に実行される、アプリケーション固有のPersistentPreRunEです。
// NOTE: clibaseの PersistentPreRunE チェーンにより、clibase.Flags.Verbose はこの関数実行前に設定済み
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(Flags.EnvFile)
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗しました: %w", err)
	}
	appConfig = cfg

	timeout := time.Duration(Flags.TimeoutSec) * time.Second
	if clibase.Flags.Verbose {
		log.Printf("HTTPクライアントのタイムアウトを設定しました (Timeout: %s)。", timeout)
		log.Printf("HTTPクライアントのリトライ回数を設定しました (MaxRetries: %d)。", Flags.MaxRetries)
	}

	// 共有フェッチャーの初期化 (User-Agent はリクエストごとにローテーション)
	globalFetcher = httpclient.New(timeout, uint64(Flags.MaxRetries))
	return nil
}

// GetGlobalFetcher は、初期化されたフェッチャーを返す関数 (DIの代わり)
func GetGlobalFetcher() httpclient.Fetcher {
	if globalFetcher == nil {
		return nil
	}
	return globalFetcher
}

// openRepository は設定から DSN を組み立て、データベースへ接続します。
// 呼び出し側は必ず Close してください。
func openRepository(ctx context.Context) (*store.Repository, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("設定が初期化されていません")
	}
	dsn, err := appConfig.DSN()
	if err != nil {
		return nil, err
	}
	return store.Connect(ctx, dsn, retry.DefaultConfig())
}

// --- エントリポイント ---

// Execute は、rootCmd を実行するメイン関数です。clibaseのExecuteを使用する。
func Execute() {
	clibase.Execute(
		appName,
		addAppPersistentFlags,
		initAppPreRunE,
		scrapeCmd,
		dashboardCmd,
		serveCmd,
		extractCmd,
		parseCmd,
	)
}
