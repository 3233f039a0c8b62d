// internal/logging/logger.go

// Package logging 以 zap 為後端、透過 zapr 對外提供 logr.Logger。
// 核心元件（bank、ring）不記錄日誌；工作者與驅動程式從 context 取得 logger。
// 測試用 logger 位於 loggingtest 子套件，正式程式碼不依賴 testing。
package logging

import (
	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// logr V 等級。數字越大越詳細。
const (
	DEFAULT = 2
	VERBOSE = 3
	DEBUG   = 4
	TRACE   = 5
)

// NewLogger 建立 logger；verbosity 對應 logr 的 V 等級上限。
// 回傳的 sync 函式應於程式結束前呼叫以清空緩衝。
func NewLogger(verbosity int, development bool) (logr.Logger, func(), error) {
	cfg := uberzap.NewProductionConfig()
	if development {
		cfg = uberzap.NewDevelopmentConfig()
	}
	cfg.Level = uberzap.NewAtomicLevelAt(levelFor(verbosity))
	cfg.Sampling = nil

	zl, err := cfg.Build(uberzap.AddCaller())
	if err != nil {
		return logr.Discard(), func() {}, err
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}

// levelFor 將 logr verbosity 轉為 zap 等級（V(n) 對應 zap 等級 -n）。
func levelFor(verbosity int) zapcore.Level {
	if verbosity < 0 {
		verbosity = 0
	}
	if verbosity > 127 {
		verbosity = 127
	}
	return zapcore.Level(int8(-verbosity))
}
