package archive

import (
	"net/url"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"

	"github.com/shouni/lj-archive/pkg/types"
)

const (
	dateLayout    = "2006-01-02"
	fileExtension = ".html"
)

// EncodeTitle は、タイトルをファイル名として安全に使える形に変換します。
// Jekyll はスペースや非ラテン文字を含むファイル名を読み込めても、生成されるリンクが壊れるため、
// ラテン文字へ音訳した上でクエリ形式 (スペースは "+") にパーセントエンコードします。
func EncodeTitle(title string) string {
	latin := unidecode.Unidecode(norm.NFC.String(title))
	return url.QueryEscape(latin)
}

// FileName は "<更新日>-<エンコード済みタイトル>.html" 形式のファイル名を返します。
func FileName(entry types.Entry) string {
	return entry.Updated.Format(dateLayout) + "-" + EncodeTitle(entry.Title) + fileExtension
}
