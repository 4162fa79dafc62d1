package archive

import (
	"strings"

	"github.com/shouni/lj-archive/pkg/types"
)

const frontMatterDelimiter = "---"

// DefaultFrontMatter は、各記事のヘッダーに書き込む固定のメタデータ行です。
var DefaultFrontMatter = []string{"categories: blog", "layout: post"}

// Render は、Jekyll のヘッダーブロックと本文のHTMLフラグメントを改行で連結した文字列を返します。
// title 行にはエンコード前のタイトルをそのまま書き込みます。
func Render(entry types.Entry, frontMatter []string) string {
	lines := make([]string, 0, len(frontMatter)+4)
	lines = append(lines, frontMatterDelimiter, "title: "+entry.Title)
	lines = append(lines, frontMatter...)
	lines = append(lines, frontMatterDelimiter, entry.Content)
	return strings.Join(lines, "\n")
}
