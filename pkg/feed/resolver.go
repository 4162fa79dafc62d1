package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/mmcdole/gofeed"

	"github.com/shouni/lj-archive/pkg/extract"
)

// ErrNoEntries は、フィードに記事へのリンクが1つもないことを示します。
var ErrNoEntries = errors.New("フィードに記事が含まれていません")

// Resolver は、ジャーナルのRSS/Atomフィードから最新記事のURLを求めます。
type Resolver struct {
	client extract.Fetcher
}

// NewResolver は新しい Resolver インスタンスを初期化し、依存関係を注入します。
func NewResolver(client extract.Fetcher) *Resolver {
	return &Resolver{client: client}
}

// FetchAndParse は指定されたURLからフィードを取得し、パースします。
func (r *Resolver) FetchAndParse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	body, err := r.client.FetchBytes(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得失敗 (URL: %s): %w", feedURL, err)
	}

	fp := gofeed.NewParser()
	feed, parseErr := fp.Parse(bytes.NewReader(body))
	if parseErr != nil {
		return nil, fmt.Errorf("フィードのパース失敗 (URL: %s): %w", feedURL, parseErr)
	}
	return feed, nil
}

// LatestEntryURL は、フィード内で最も新しい記事のURLを返します。
// クロールの開始URLとして使用します。
func (r *Resolver) LatestEntryURL(ctx context.Context, feedURL string) (string, error) {
	parsed, err := r.FetchAndParse(ctx, feedURL)
	if err != nil {
		return "", err
	}

	link, ok := LatestFrom(NewFeedAdapter(parsed))
	if !ok {
		return "", fmt.Errorf("%w (URL: %s)", ErrNoEntries, feedURL)
	}
	return link, nil
}
