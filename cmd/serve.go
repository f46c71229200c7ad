package cmd

import (
	"os"
	"os/signal"
	"syscall"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/blog-insights/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "ダッシュボードを HTTP で公開します",
	Long: `GET / で集計ページを、/api/articles・/api/stats・/api/options で JSON を返します。
リクエストごとに articles テーブルを読み直し、クエリパラメーターで絞り込みます。`,
	Args: cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		repo, err := openRepository(ctx)
		if err != nil {
			return err
		}
		defer repo.Close()

		h, err := server.NewHandler(repo)
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = appConfig.DashboardAddr
		}
		return server.Run(ctx, server.New(h, clibase.Flags.Verbose), addr)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "待ち受けアドレス (省略時は DASHBOARD_ADDR)")
}
