package extract

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、HTMLドキュメントの生バイト配列を取得する機能のインターフェースを定義します。
// 成功以外のHTTPステータスはエラーとして返すことが期待されます。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Strategy は、ページ内の各フィールドの位置を特定するクエリをまとめたものです。
// サイトのマークアップは非公開かつ不安定なため、セレクターはすべてここに閉じ込め、
// クロールループに手を入れずに差し替えられるようにしています。
//
// 各メソッドは、要素が見つからなかった場合に ok=false を返します。
type Strategy interface {
	FindPredecessorLink(doc *goquery.Document) (href string, ok bool)
	FindTimestamp(doc *goquery.Document) (raw string, ok bool)
	FindTitle(doc *goquery.Document) (title string, ok bool)
	FindContent(doc *goquery.Document) (container *goquery.Selection, ok bool)
}
