package feed

import (
	"time"

	"github.com/mmcdole/gofeed"
)

// LinkSource は、リンクアイテムのリストを提供できる任意の型を表します。
type LinkSource interface {
	GetLinks() []string
	LatestLink() (string, bool)
}

// LatestFrom は、任意の LinkSource から最新のリンクを取り出します。
func LatestFrom(source LinkSource) (string, bool) {
	if source == nil {
		return "", false
	}
	return source.LatestLink()
}

// FeedAdapter は gofeed.Feed を LinkSource に適合させるためのアダプターです。
// gofeed.Feed の具体的な構造への依存を内部に閉じ込めます。
type FeedAdapter struct {
	*gofeed.Feed
}

// NewFeedAdapter は gofeed.Feed から新しいアダプターを作成します。
func NewFeedAdapter(feed *gofeed.Feed) *FeedAdapter {
	return &FeedAdapter{Feed: feed}
}

// GetLinks は、フィード内の空でないリンクを出現順に返します。
func (a *FeedAdapter) GetLinks() []string {
	if a.Feed == nil || len(a.Items) == 0 {
		return []string{}
	}

	urls := make([]string, 0, len(a.Items))
	for _, item := range a.Items {
		if item != nil && item.Link != "" {
			urls = append(urls, item.Link)
		}
	}
	return urls
}

// LatestLink は、公開日時 (なければ更新日時) が最も新しいアイテムのリンクを返します。
// 日時を持つアイテムが1つもない場合は、フィードの先頭のリンクを返します。
func (a *FeedAdapter) LatestLink() (string, bool) {
	if a.Feed == nil {
		return "", false
	}

	var (
		latest     string
		latestTime time.Time
	)
	for _, item := range a.Items {
		if item == nil || item.Link == "" {
			continue
		}
		ts := itemTime(item)
		if ts == nil {
			continue
		}
		if latest == "" || ts.After(latestTime) {
			latest, latestTime = item.Link, *ts
		}
	}
	if latest != "" {
		return latest, true
	}

	links := a.GetLinks()
	if len(links) == 0 {
		return "", false
	}
	return links[0], true
}

func itemTime(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}
