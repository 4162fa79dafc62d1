package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/shouni/lj-archive/internal/config"
	"github.com/shouni/lj-archive/pkg/archive"
	"github.com/shouni/lj-archive/pkg/crawler"
	"github.com/shouni/lj-archive/pkg/extract"
	"github.com/shouni/lj-archive/pkg/feed"
)

// Options は、アーカイブ処理パイプラインの入力です。
// Fetcher, Fs, Logger は nil の場合にデフォルトの実装を使用します。
type Options struct {
	StartURL string
	Config   config.Config
	Fetcher  extract.Fetcher
	Fs       afero.Fs
	Logger   *zap.Logger
}

// NewFetcher は、リトライなしの HTTP クライアントを生成します。
// 失敗は即座にクロールの中止として扱うため、リトライ回数は 0 に固定しています。
func NewFetcher(timeoutSec int) extract.Fetcher {
	timeout := time.Duration(timeoutSec) * time.Second
	if timeoutSec == 0 {
		timeout = time.Duration(config.DefaultTimeoutSec) * time.Second
	}
	return httpkit.New(timeout, httpkit.WithMaxRetries(0))
}

// Run は、開始URLから記事のチェーンを辿り、すべての記事を出力先ディレクトリに保存するメインの処理パイプラインです。
func Run(ctx context.Context, opts Options) (crawler.Summary, error) {
	// 1. 依存性の初期化
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(opts.Config.TimeoutSec)
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	// 2. 開始URLの決定 (フィードが指定された場合は最新の記事)
	startURL := opts.StartURL
	if opts.Config.Feed {
		latest, err := feed.NewResolver(fetcher).LatestEntryURL(ctx, startURL)
		if err != nil {
			return crawler.Summary{}, fmt.Errorf("開始URLの決定に失敗しました: %w", err)
		}
		logger.Info("フィードから最新の記事を取得しました", zap.String("feed", startURL), zap.String("url", latest))
		startURL = latest
	}

	// 3. Extractor, Store, Driver の組み立て (DI)
	extractor, err := extract.NewExtractor(extract.LiveJournal{}, logger)
	if err != nil {
		return crawler.Summary{}, fmt.Errorf("Extractorの初期化エラー: %w", err)
	}
	store := archive.NewStore(fs, opts.Config.Destination, opts.Config.FrontMatter)
	driver, err := crawler.NewDriver(fetcher, extractor, store, crawler.Config{
		Logger:       logger,
		AllowRevisit: opts.Config.AllowRevisit,
	})
	if err != nil {
		return crawler.Summary{}, fmt.Errorf("Driverの初期化エラー: %w", err)
	}

	// 4. クロールの実行
	return driver.Run(ctx, startURL)
}
