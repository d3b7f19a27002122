package note

import "github.com/russross/blackfriday/v2"

// Renderer turns markdown source into HTML.
type Renderer interface {
	Render(md string) string
}

type markdownRenderer struct{}

var _ Renderer = (*markdownRenderer)(nil)

// NewMarkdownRenderer returns the default blackfriday-backed renderer.
func NewMarkdownRenderer() Renderer {
	return &markdownRenderer{}
}

func (markdownRenderer) Render(md string) string {
	return string(blackfriday.Run([]byte(md)))
}
