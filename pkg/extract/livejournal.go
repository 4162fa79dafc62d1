package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ----------------------------------------------------------------------
// 定数定義 (LiveJournal のマークアップ)
// ----------------------------------------------------------------------
const (
	predecessorSelector = "span.entry-linkbar-inner > a > img[alt='Previous Entry']"
	timestampSelector   = "abbr.updated"
	titleSelector       = "dt.entry-title"
	contentSelector     = "div.entry-content"

	timestampAttr = "title"
)

// LiveJournal は、LiveJournal の記事ページ向けの Strategy 実装です。
type LiveJournal struct{}

// FindPredecessorLink は「Previous Entry」画像を囲むアンカーの href を返します。
func (LiveJournal) FindPredecessorLink(doc *goquery.Document) (string, bool) {
	img := doc.Find(predecessorSelector).First()
	if img.Length() == 0 {
		return "", false
	}
	href, ok := img.Parent().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", false
	}
	return href, true
}

// FindTimestamp は abbr.updated の title 属性を、加工せずにそのまま返します。
func (LiveJournal) FindTimestamp(doc *goquery.Document) (string, bool) {
	abbr := doc.Find(timestampSelector).First()
	if abbr.Length() == 0 {
		return "", false
	}
	raw, ok := abbr.Attr(timestampAttr)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

func (LiveJournal) FindTitle(doc *goquery.Document) (string, bool) {
	dt := doc.Find(titleSelector).First()
	if dt.Length() == 0 {
		return "", false
	}
	return dt.Text(), true
}

func (LiveJournal) FindContent(doc *goquery.Document) (*goquery.Selection, bool) {
	div := doc.Find(contentSelector).First()
	return div, div.Length() > 0
}
