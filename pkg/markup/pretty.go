package markup

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const indentUnit = "  "

// voidElements は終了タグを持たない要素です。
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// verbatimElements は整形せずそのまま出力する要素です。
// pre と textarea は空白に意味があり、それ以外はパーサーが中身を1つの生テキストとして保持します。
var verbatimElements = map[string]bool{
	"pre": true, "textarea": true, "script": true, "style": true,
	"noscript": true, "iframe": true, "xmp": true, "noembed": true,
	"noframes": true, "plaintext": true,
}

var (
	// NBSP (U+00A0) は本文の一部として残すため、ASCIIの空白のみを対象にします。
	asciiSpaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)
	textEscaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper   = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

// Pretty は、DOMノード (とその子孫) を人が読みやすいHTML文字列に再シリアライズします。
// 1行に1ノード、入れ子は2スペースでインデントし、属性はソース上の順序を保持します。
// 同じ入力に対しては常に同じ出力を返します。
func Pretty(nodes ...*html.Node) (string, error) {
	var b strings.Builder
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := writeNode(&b, n, 0); err != nil {
			return "", fmt.Errorf("HTMLのシリアライズに失敗しました: %w", err)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func writeNode(b *strings.Builder, n *html.Node, depth int) error {
	indent := strings.Repeat(indentUnit, depth)

	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := writeNode(b, c, depth); err != nil {
				return err
			}
		}

	case html.TextNode:
		text := strings.Trim(asciiSpaceRun.ReplaceAllString(n.Data, " "), " ")
		if text == "" {
			return nil
		}
		b.WriteString(indent)
		b.WriteString(textEscaper.Replace(text))
		b.WriteByte('\n')

	case html.CommentNode:
		b.WriteString(indent)
		b.WriteString("<!--" + n.Data + "-->")
		b.WriteByte('\n')

	case html.DoctypeNode:
		b.WriteString(indent)
		b.WriteString("<!DOCTYPE " + n.Data + ">")
		b.WriteByte('\n')

	case html.ElementNode:
		b.WriteString(indent)
		if verbatimElements[n.Data] {
			if err := html.Render(b, n); err != nil {
				return err
			}
			b.WriteByte('\n')
			return nil
		}

		writeStartTag(b, n)
		b.WriteByte('\n')
		if voidElements[n.Data] {
			return nil
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if err := writeNode(b, c, depth+1); err != nil {
				return err
			}
		}
		b.WriteString(indent)
		b.WriteString("</" + n.Data + ">")
		b.WriteByte('\n')
	}

	return nil
}

func writeStartTag(b *strings.Builder, n *html.Node) {
	b.WriteByte('<')
	b.WriteString(n.Data)
	for _, a := range n.Attr {
		b.WriteByte(' ')
		if a.Namespace != "" {
			b.WriteString(a.Namespace + ":")
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(attrEscaper.Replace(a.Val))
		b.WriteByte('"')
	}
	b.WriteByte('>')
}
