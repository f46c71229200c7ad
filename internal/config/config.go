// Package config は .env ファイルと環境変数からアプリケーション設定を読み込みます。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/shouni/blog-insights/pkg/feed"
	"github.com/shouni/blog-insights/pkg/listing"
)

const (
	DefaultEnvFile       = ".env"
	DefaultDBName        = "postgres"
	DefaultDBPort        = 5432
	DefaultDashboardAddr = ":8080"
	DefaultRequestDelay  = 500 * time.Millisecond
)

// Config はパイプラインとダッシュボードが共有する設定値です。
type Config struct {
	ConnectionString string
	DBHost           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBPort           int

	ListingURL    string
	FeedURL       string
	BodySelector  string
	RequestDelay  time.Duration
	DashboardAddr string
}

// Load は envFile (存在しなければ無視) を環境変数に取り込み、viper 経由で設定を組み立てます。
// 既に設定されている環境変数は .env の値で上書きされません。
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("envファイルの読み込みに失敗しました (%s): %w", envFile, err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("db_name", DefaultDBName)
	v.SetDefault("db_port", DefaultDBPort)
	v.SetDefault("listing_url", listing.DefaultListingURL)
	v.SetDefault("feed_url", feed.DefaultFeedURL)
	v.SetDefault("dashboard_addr", DefaultDashboardAddr)
	v.SetDefault("request_delay", DefaultRequestDelay)

	cfg := &Config{
		ConnectionString: v.GetString("connection_string"),
		DBHost:           v.GetString("db_host"),
		DBUser:           v.GetString("db_user"),
		DBPassword:       v.GetString("db_password"),
		DBName:           v.GetString("db_name"),
		DBPort:           v.GetInt("db_port"),
		ListingURL:       v.GetString("listing_url"),
		FeedURL:          v.GetString("feed_url"),
		BodySelector:     v.GetString("body_selector"),
		RequestDelay:     v.GetDuration("request_delay"),
		DashboardAddr:    v.GetString("dashboard_addr"),
	}
	return cfg, nil
}

// DSN は接続文字列を返します。CONNECTION_STRING が優先され、無ければ個別の値から組み立てます。
func (c *Config) DSN() (string, error) {
	if c.ConnectionString != "" {
		return c.ConnectionString, nil
	}
	if c.DBHost == "" || c.DBUser == "" {
		return "", fmt.Errorf("データベース設定が不足しています: CONNECTION_STRING または DB_HOST/DB_USER を設定してください")
	}

	port := c.DBPort
	if port == 0 {
		port = DefaultDBPort
	}
	name := c.DBName
	if name == "" {
		name = DefaultDBName
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DBUser, c.DBPassword),
		Host:   net.JoinHostPort(c.DBHost, strconv.Itoa(port)),
		Path:   "/" + name,
	}
	return u.String(), nil
}
