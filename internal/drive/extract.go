package drive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// Google 原生文档导出成什么格式
var exportFormats = map[string]string{
	MimeGoogleDoc:    "text/plain",
	MimeGoogleSheet:  "text/csv",
	MimeGoogleSlides: "text/plain",
}

// NotImplementedText 不支持的格式不算失败，写一段占位文本
func NotImplementedText(mimeType string) string {
	return fmt.Sprintf("%s content extraction not implemented", mimeType)
}

// ExtractText 按 MIME 类型取出文件的纯文本
func ExtractText(ctx context.Context, svc Service, f File) (string, error) {
	// 1. Google 原生文档：服务端导出
	if target, ok := exportFormats[f.MimeType]; ok {
		raw, err := svc.Export(ctx, f.ID, target)
		if err != nil {
			return "", err
		}
		return decodeUTF8(raw), nil
	}

	// 2. 文本类：下载后解码
	if strings.HasPrefix(f.MimeType, "text/") {
		raw, err := svc.Download(ctx, f.ID)
		if err != nil {
			return "", err
		}
		switch baseType(f.MimeType) {
		case "text/html":
			return htmlToText(raw)
		case "text/markdown", "text/x-markdown":
			return markdownToText(raw), nil
		default:
			return decodeUTF8(raw), nil
		}
	}

	// 3. PDF / DOCX / 图片等
	return NotImplementedText(f.MimeType), nil
}

// "text/html; charset=utf-8" -> "text/html"
func baseType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

func decodeUTF8(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if utf8.Valid(raw) {
		return string(raw)
	}
	return strings.ToValidUTF8(string(raw), "�")
}

func htmlToText(raw []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "head":
				return
			case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				b.WriteString("\n")
			}
		}
		if n.Type == html.TextNode {
			if s := strings.TrimSpace(n.Data); s != "" {
				b.WriteString(s)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return cleanLines(b.String()), nil
}

func markdownToText(raw []byte) string {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	doc := goldmark.New().Parser().Parse(text.NewReader(raw))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(raw))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString("\n")
			}
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			b.WriteString("\n")
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			b.WriteString("\n")
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(raw))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return cleanLines(b.String())
}

// 去掉每行首尾空白和空行
func cleanLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
