// Package store は articles テーブルへの書き込み (upsert) と全件読み込みを担当します。
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shouni/blog-insights/pkg/retry"
	"github.com/shouni/blog-insights/pkg/types"
)

const (
	insertArticleQuery = `
	INSERT INTO articles (link, title, time_uploaded, authors, tags, reading_time,
		article_content, word_count, sentiment, compound_score, language)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (link) DO NOTHING`

	selectArticlesQuery = `
	SELECT link, title, time_uploaded, authors, tags, reading_time,
		article_content, word_count, sentiment, compound_score, language
	FROM articles`
)

// PgxIface は Repository が利用する pgx の操作です。
// *pgxpool.Pool と pgxmock のプールの両方が満たします。
type PgxIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Repository は articles テーブルへのアクセスを提供します。
type Repository struct {
	pool PgxIface
}

// NewRepository は既存の接続から Repository を生成します。
func NewRepository(pool PgxIface) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("store.NewRepository: pool cannot be nil")
	}
	return &Repository{pool: pool}, nil
}

// Connect はプールを作成し、データベースが応答するまでバックオフ付きで Ping します。
// 失敗した場合、作成済みのプールは閉じられます。
func Connect(ctx context.Context, dsn string, retryCfg retry.Config) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続プールの作成に失敗しました: %w", err)
	}

	if retryCfg.Notify == nil {
		retryCfg.Notify = func(err error, wait time.Duration) {
			log.Printf("データベースがまだ応答しません。%s 後に再試行します: %v", wait, err)
		}
	}

	err = retry.Do(ctx, retryCfg, "データベースへの接続", func() error {
		return pool.Ping(ctx)
	}, retry.Always)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Repository{pool: pool}, nil
}

// Close は接続プールを解放します。
func (r *Repository) Close() {
	r.pool.Close()
}

// Upsert は1つのトランザクション内で1行ずつ INSERT し、最後に1回だけコミットします。
// link が既に存在する行は何もせずスキップされます。途中で失敗した場合はロールバックされます。
// 戻り値は実際に挿入された行数です。
func (r *Repository) Upsert(ctx context.Context, articles []types.EnrichedArticle) (inserted int64, err error) {
	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Printf("ロールバックに失敗しました: %v", rbErr)
			}
		}
	}()

	for _, a := range articles {
		tag, execErr := tx.Exec(ctx, insertArticleQuery,
			a.Link, a.Title, a.TimeUploaded, a.Author, a.Tags, a.ReadingTime,
			a.ArticleContent, a.WordCount, string(a.Sentiment), a.CompoundScore, a.Language,
		)
		if execErr != nil {
			return 0, fmt.Errorf("記事の挿入に失敗しました (URL: %s): %w", a.Link, execErr)
		}
		inserted += tag.RowsAffected()
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("コミットに失敗しました: %w", err)
	}
	return inserted, nil
}

// LoadAll は articles テーブルを全件読み込みます。
func (r *Repository) LoadAll(ctx context.Context) ([]types.EnrichedArticle, error) {
	rows, err := r.pool.Query(ctx, selectArticlesQuery)
	if err != nil {
		return nil, fmt.Errorf("記事の読み込みに失敗しました: %w", err)
	}
	defer rows.Close()

	var articles []types.EnrichedArticle
	for rows.Next() {
		var (
			a         types.EnrichedArticle
			sentiment *string
			wordCount *int
			content   *string
			language  *string
			compound  *float64
		)
		if err := rows.Scan(
			&a.Link, &a.Title, &a.TimeUploaded, &a.Author, &a.Tags, &a.ReadingTime,
			&content, &wordCount, &sentiment, &compound, &language,
		); err != nil {
			return nil, fmt.Errorf("記事行の読み取りに失敗しました: %w", err)
		}
		a.ArticleContent = types.Deref(content)
		a.Sentiment = types.Sentiment(types.Deref(sentiment))
		a.Language = types.Deref(language)
		if wordCount != nil {
			a.WordCount = *wordCount
		}
		if compound != nil {
			a.CompoundScore = *compound
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記事の読み込み中にエラーが発生しました: %w", err)
	}
	return articles, nil
}
