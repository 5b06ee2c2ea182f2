package extractor

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const markdownFileExtension = ".md"

// MarkdownExtractor drops markup and keeps the prose. Headings become
// upper-case lines of their own.
type MarkdownExtractor struct {
	md goldmark.Markdown
}

func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{md: goldmark.New()}
}

func (me *MarkdownExtractor) Extract(content []byte) (string, error) {
	src, err := NewTextExtractor().Extract(content)
	if err != nil {
		return "", err
	}
	source := []byte(src)

	doc := me.md.Parser().Parse(text.NewReader(source))

	var (
		b       strings.Builder
		heading strings.Builder
		inHead  bool
	)
	out := func() *strings.Builder {
		if inHead {
			return &heading
		}
		return &b
	}

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if entering {
				inHead = true
				heading.Reset()
				return ast.WalkContinue, nil
			}
			inHead = false
			b.WriteString(strings.ToUpper(strings.TrimSpace(heading.String())))
			b.WriteString("\n\n")
		case *ast.Paragraph:
			if !entering {
				b.WriteString("\n\n")
			}
		case *ast.TextBlock:
			if !entering {
				b.WriteString("\n")
			}
		case *ast.ListItem:
			if entering {
				b.WriteString("- ")
			}
		case *ast.ThematicBreak:
			if entering {
				b.WriteString("\n")
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(source))
				}
				b.WriteString("\n")
			}
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				w := out()
				w.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					if inHead {
						w.WriteByte(' ')
					} else {
						w.WriteByte('\n')
					}
				}
			}
		case *ast.String:
			if entering {
				out().Write(node.Value)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(b.String()) + "\n", nil
}

func (me *MarkdownExtractor) FileExtension() string {
	return markdownFileExtension
}
