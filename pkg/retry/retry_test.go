package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.Equal(t, uint64(DefaultMaxRetries), cfg.MaxRetries)
	require.Equal(t, InitialBackoffInterval, cfg.InitialInterval)
	require.Equal(t, MaxBackoffInterval, cfg.MaxInterval)
}

func TestNewBackOffPolicy(t *testing.T) {
	cfg := Config{
		MaxRetries:      5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}

	bo := newBackOffPolicy(context.Background(), cfg)
	require.NotNil(t, bo)
}

func TestDo(t *testing.T) {
	// テスト用の高速な設定
	testCfg := Config{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: 10 * time.Millisecond}
	opName := "test_operation"

	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name          string
		ctx           context.Context
		operation     Operation
		shouldRetry   ShouldRetryFunc
		expectedError string
		expectedCalls int
	}{
		{
			name:          "successful operation",
			ctx:           context.Background(),
			operation:     func() error { return nil },
			expectedCalls: 1,
		},
		{
			name: "retryable error and success within max retries",
			ctx:  context.Background(),
			operation: func() Operation {
				attempt := 0
				return func() error {
					attempt++
					if attempt < 3 {
						return errors.New("retryable error")
					}
					return nil
				}
			}(),
			shouldRetry:   Always,
			expectedCalls: 3,
		},
		{
			name:          "non retryable error",
			ctx:           context.Background(),
			operation:     func() error { return errors.New("bad request") },
			shouldRetry:   func(err error) bool { return false },
			expectedError: opName + "に失敗しました: リトライ対象外のエラー: bad request",
			expectedCalls: 1,
		},
		{
			name:          "permanent error",
			ctx:           context.Background(),
			operation:     func() error { return backoff.Permanent(errors.New("permanent error")) },
			shouldRetry:   Always,
			expectedError: "リトライ対象外のエラー",
			expectedCalls: 1,
		},
		{
			name:          "context canceled",
			ctx:           canceled,
			operation:     func() error { return errors.New("some error") },
			shouldRetry:   Always,
			expectedError: opName + "に失敗しました: コンテキストタイムアウト/キャンセル: context canceled",
		},
		{
			name:          "max retries exceeded",
			ctx:           context.Background(),
			operation:     func() error { return errors.New("retryable error") },
			shouldRetry:   Always,
			expectedError: fmt.Sprintf("%sに失敗しました: 最大リトライ回数 (%d回) に到達。最終エラー: retryable error", opName, testCfg.MaxRetries),
			expectedCalls: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			op := func() error {
				calls++
				return tt.operation()
			}

			err := Do(tt.ctx, testCfg, opName, op, tt.shouldRetry)

			if tt.expectedError == "" {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.Contains(t, err.Error(), tt.expectedError)
			}
			if tt.expectedCalls > 0 {
				require.Equal(t, tt.expectedCalls, calls)
			}
		})
	}
}

func TestDo_Notify(t *testing.T) {
	notified := 0
	cfg := Config{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		Notify:          func(err error, wait time.Duration) { notified++ },
	}

	err := Do(context.Background(), cfg, "notify", func() error { return errors.New("down") }, nil)
	require.Error(t, err)
	require.Equal(t, 2, notified)
}
