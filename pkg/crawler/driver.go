package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/shouni/lj-archive/pkg/extract"
	"github.com/shouni/lj-archive/pkg/types"
)

// EntryExtractor は、ページの生HTMLから Entry を抽出する機能です。
type EntryExtractor interface {
	Extract(page []byte) (types.Entry, error)
}

// EntryStore は、Entry を永続化する機能です。
type EntryStore interface {
	EnsureDir() error
	Save(entry types.Entry) (string, error)
}

// Config は Driver の動作設定です。
type Config struct {
	Logger *zap.Logger
	// AllowRevisit が true の場合、訪問済みURLの検出を行いません。
	AllowRevisit bool
}

// Summary は、Run の実行結果です。
type Summary struct {
	Fetched int      // 取得したページ数
	Files   []string // 書き出したファイルのパス (取得順)
	LastURL string   // 最後に処理したURL
}

// Driver は、前の記事へのリンクを辿りながら記事を1件ずつ取得・保存します。
type Driver struct {
	fetcher   extract.Fetcher
	extractor EntryExtractor
	store     EntryStore
	cfg       Config
	logger    *zap.Logger
}

// NewDriver は、新しい Driver を生成します。
func NewDriver(fetcher extract.Fetcher, extractor EntryExtractor, store EntryStore, cfg Config) (*Driver, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("crawler.NewDriver: Fetcher cannot be nil")
	}
	if extractor == nil {
		return nil, fmt.Errorf("crawler.NewDriver: Extractor cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("crawler.NewDriver: Store cannot be nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		fetcher:   fetcher,
		extractor: extractor,
		store:     store,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Run は startURL から前の記事へのリンクを辿り、チェーンの終端に達するまで記事を保存します。
// 最初のエラーで処理を中止します。それまでに書き出したファイルはそのまま残ります。
// チェーンの長さに上限はないため、再帰ではなくループで処理します。
func (d *Driver) Run(ctx context.Context, startURL string) (Summary, error) {
	var summary Summary

	// 1. 記事を書き出す前に出力先ディレクトリを用意
	if err := d.store.EnsureDir(); err != nil {
		return summary, err
	}

	visited := make(map[string]struct{})
	current := startURL

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		// 2. 循環の検出
		if !d.cfg.AllowRevisit {
			key := visitKey(current)
			if _, seen := visited[key]; seen {
				return summary, fmt.Errorf("%w: %s", ErrCycleDetected, current)
			}
			visited[key] = struct{}{}
		}

		// 3. 1記事分の取得・抽出・保存
		summary.Fetched++
		summary.LastURL = current
		res := d.Step(ctx, current)
		if res.Path != "" {
			summary.Files = append(summary.Files, res.Path)
		}
		if res.Err != nil {
			d.logger.Error("クロールを中止します", zap.String("url", current), zap.Error(res.Err))
			return summary, res.Err
		}

		// 4. 前の記事がなければ終了
		if res.Done() {
			d.logger.Info("チェーンの終端に到達しました",
				zap.Int("fetched", summary.Fetched),
				zap.Int("written", len(summary.Files)))
			return summary, nil
		}
		current = res.Next
	}
}

// Step は1つのURLに対して取得・抽出・保存を行い、その結果を返します。
// エラーは StepResult.Err に格納され、呼び出し元が続行するかどうかを判断します。
func (d *Driver) Step(ctx context.Context, pageURL string) types.StepResult {
	res := types.StepResult{URL: pageURL}
	d.logger.Info("記事を取得します", zap.String("url", pageURL))

	page, err := d.fetcher.FetchBytes(ctx, pageURL)
	if err != nil {
		res.Err = &FetchError{URL: pageURL, Err: err}
		return res
	}

	entry, err := d.extractor.Extract(page)
	if err != nil {
		res.Err = fmt.Errorf("記事の抽出に失敗しました (URL: %s): %w", pageURL, err)
		return res
	}
	res.Entry = entry

	path, err := d.store.Save(entry)
	if err != nil {
		res.Err = fmt.Errorf("記事の保存に失敗しました (URL: %s): %w", pageURL, err)
		return res
	}
	res.Path = path
	d.logger.Debug("記事を保存しました", zap.String("path", path))

	if entry.HasPredecessor() {
		next, err := resolveLink(pageURL, entry.PredecessorURL)
		if err != nil {
			res.Err = fmt.Errorf("次のURLを決定できません (URL: %s): %w", pageURL, err)
			return res
		}
		res.Next = next
	}
	return res
}

// resolveLink は、相対リンクを現在のページのURLを基準に解決します。
func resolveLink(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", &extract.ExtractionError{Field: extract.FieldPredecessor, Err: fmt.Errorf("%w: %v", extract.ErrMalformedLink, err)}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", &extract.ExtractionError{Field: extract.FieldPredecessor, Err: fmt.Errorf("%w: %v", extract.ErrMalformedLink, err)}
	}
	return baseURL.ResolveReference(ref).String(), nil
}

// visitKey は循環検出に使う URL のキーを返します。
// http と https の違い、ホスト名の大文字小文字、フラグメントは同じ記事として扱います。
func visitKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	key := strings.ToLower(u.Host) + u.EscapedPath()
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}
