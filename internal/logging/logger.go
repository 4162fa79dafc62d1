// Package logging は、アプリケーション全体に注入する zap ロガーを構築します。
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New は、標準出力に書き込むコンソール形式のロガーを生成します。
// debugLevel が 0 より大きいか verbose が true の場合はデバッグレベル、それ以外は情報レベルです。
func New(debugLevel int, verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(Level(debugLevel, verbose))

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("ロガーの初期化に失敗しました: %w", err)
	}
	return logger, nil
}

// Level は、デバッグ設定に対応するログレベルを返します。
func Level(debugLevel int, verbose bool) zapcore.Level {
	if debugLevel > 0 || verbose {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}
