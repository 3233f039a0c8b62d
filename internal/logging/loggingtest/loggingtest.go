// internal/logging/loggingtest/loggingtest.go

// Package loggingtest 提供寫入 t.Log 的 logr.Logger，只供測試使用。
package loggingtest

import (
	"context"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"

	"lockstep/internal/logging"
)

// NewTestLogger 建立寫入 t.Log 的 logger，顯示到 TRACE 等級。
func NewTestLogger(t testing.TB) logr.Logger {
	return zapr.NewLogger(zaptest.NewLogger(t, zaptest.Level(zapcore.Level(-logging.TRACE))))
}

// NewTestLoggerIntoContext 建立測試 logger 並放入 ctx。
func NewTestLoggerIntoContext(ctx context.Context, t testing.TB) context.Context {
	return logr.NewContext(ctx, NewTestLogger(t))
}
