package markdown_test

import (
	"strings"
	"testing"

	"github.com/oamra/tano-web-ui/internal/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInline(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []markdown.Node
	}{
		{
			name: "plain text",
			line: "hola mundo",
			want: []markdown.Node{
				{Kind: markdown.NodeText, Content: "hola mundo"},
			},
		},
		{
			name: "bold spans interleaved with text",
			line: "a **b** c **d** e",
			want: []markdown.Node{
				{Kind: markdown.NodeText, Content: "a "},
				{Kind: markdown.NodeBold, Content: "b"},
				{Kind: markdown.NodeText, Content: " c "},
				{Kind: markdown.NodeBold, Content: "d"},
				{Kind: markdown.NodeText, Content: " e"},
			},
		},
		{
			name: "italic",
			line: "some *emphasis* here",
			want: []markdown.Node{
				{Kind: markdown.NodeText, Content: "some "},
				{Kind: markdown.NodeItalic, Content: "emphasis"},
				{Kind: markdown.NodeText, Content: " here"},
			},
		},
		{
			name: "unmatched single asterisk stays literal",
			line: "a * b",
			want: []markdown.Node{
				{Kind: markdown.NodeText, Content: "a * b"},
			},
		},
		{
			name: "unclosed bold stays literal",
			line: "**bold",
			want: []markdown.Node{
				{Kind: markdown.NodeText, Content: "**bold"},
			},
		},
		{
			name: "inline code",
			line: "run `go test` now",
			want: []markdown.Node{
				{Kind: markdown.NodeText, Content: "run "},
				{Kind: markdown.NodeCode, Content: "go test"},
				{Kind: markdown.NodeText, Content: " now"},
			},
		},
		{
			name: "markdown link",
			line: "ver [el portal](https://portal.example/matricula)",
			want: []markdown.Node{
				{Kind: markdown.NodeText, Content: "ver "},
				{Kind: markdown.NodeLink, Content: "el portal", URL: "https://portal.example/matricula"},
			},
		},
		{
			name: "bare URL",
			line: "Visit https://x.test now",
			want: []markdown.Node{
				{Kind: markdown.NodeText, Content: "Visit "},
				{Kind: markdown.NodeLink, Content: "https://x.test", URL: "https://x.test"},
				{Kind: markdown.NodeText, Content: " now"},
			},
		},
		{
			name: "no nesting, first alternative wins",
			line: "**bold *inner* bold**",
			want: []markdown.Node{
				{Kind: markdown.NodeBold, Content: "bold *inner* bold"},
			},
		},
		{
			name: "empty line",
			line: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, markdown.ParseInline(tt.line))
		})
	}
}

func TestParseInlineBoldCount(t *testing.T) {
	// N balanced bold spans and no other markup produce exactly N bold nodes, in order.
	line := "**uno** x **dos** y **tres**"
	var bolds []string
	for _, node := range markdown.ParseInline(line) {
		if node.Kind == markdown.NodeBold {
			bolds = append(bolds, node.Content)
		}
	}
	assert.Equal(t, []string{"uno", "dos", "tres"}, bolds)
}

func TestParseListItem(t *testing.T) {
	blocks := markdown.Parse("- buy milk")
	require.Len(t, blocks, 1)
	assert.Equal(t, markdown.BlockListItem, blocks[0].Kind)
	assert.Equal(t, []markdown.Node{{Kind: markdown.NodeText, Content: "buy milk"}}, blocks[0].Nodes)
}

func TestParseBlocks(t *testing.T) {
	blocks := markdown.Parse("intro\n\n- uno\n- dos\noutro")
	require.Len(t, blocks, 5)
	assert.Equal(t, markdown.BlockParagraph, blocks[0].Kind)
	assert.Equal(t, markdown.BlockBlank, blocks[1].Kind)
	assert.Equal(t, markdown.BlockListItem, blocks[2].Kind)
	assert.Equal(t, markdown.BlockListItem, blocks[3].Kind)
	assert.Equal(t, markdown.BlockParagraph, blocks[4].Kind)
}

func TestRenderHTML(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "paragraph with bold",
			text: "hola **mundo**",
			want: "<p>hola <strong>mundo</strong></p>",
		},
		{
			name: "consecutive list items grouped",
			text: "- uno\n- dos",
			want: "<ul><li>uno</li><li>dos</li></ul>",
		},
		{
			name: "list closed before following paragraph",
			text: "- uno\nfin",
			want: "<ul><li>uno</li></ul><p>fin</p>",
		},
		{
			name: "blank line becomes break",
			text: "a\n\nb",
			want: "<p>a</p><br><p>b</p>",
		},
		{
			name: "link carries safe attributes",
			text: "[aquí](https://x.test)",
			want: `<p><a href="https://x.test" target="_blank" rel="noopener noreferrer">aquí</a></p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(markdown.RenderHTML(tt.text)))
		})
	}
}

func TestRenderHTMLEscapesInput(t *testing.T) {
	out := string(markdown.RenderHTML(`<script>alert("x")</script> **<b>**`))
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "<b>")
	assert.True(t, strings.Contains(out, "&lt;script&gt;"))
}
