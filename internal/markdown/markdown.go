package markdown

import (
	"html/template"
	"regexp"
	"strings"
)

// NodeKind identifies the styling of an inline node.
type NodeKind string

// BlockKind identifies the kind of a block-level element.
type BlockKind string

const (
	// NodeText represents unstyled literal text.
	NodeText NodeKind = "text"
	// NodeBold represents text wrapped in a matched pair of double asterisks.
	NodeBold NodeKind = "bold"
	// NodeItalic represents text wrapped in a matched pair of single asterisks.
	NodeItalic NodeKind = "italic"
	// NodeCode represents text wrapped in a matched pair of backticks.
	NodeCode NodeKind = "code"
	// NodeLink represents either a [text](url) markdown link or a bare URL.
	NodeLink NodeKind = "link"

	// BlockParagraph is a regular line of inline content.
	BlockParagraph BlockKind = "paragraph"
	// BlockListItem is a line that started with "- "; the marker is stripped from its content.
	BlockListItem BlockKind = "list_item"
	// BlockBlank is an empty line separating paragraphs.
	BlockBlank BlockKind = "blank"
)

// Node is a single typed inline element. Content holds the literal text with the markers
// already stripped. URL is only set for NodeLink nodes.
type Node struct {
	Kind    NodeKind
	Content string
	URL     string
}

// Block is one line of parsed content.
type Block struct {
	Kind  BlockKind
	Nodes []Node
}

// inlinePattern matches the five supported inline forms in a single alternation. The first
// alternative that matches at a position wins, so nesting is not supported and an unmatched
// marker never produces a token.
var inlinePattern = regexp.MustCompile(
	`\*\*.+?\*\*` +
		`|\*[^*]+\*` +
		"|`[^`]+`" +
		`|\[.*?\]\(.*?\)` +
		`|https?://[^\s<>")]+`,
)

var linkPattern = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)

// ParseInline scans a single line left to right and returns its ordered inline nodes.
// Any text between matched markers becomes a plain text node, and markers that never
// close are left verbatim inside the surrounding text. The function is pure.
func ParseInline(line string) []Node {
	var nodes []Node
	last := 0

	for _, loc := range inlinePattern.FindAllStringIndex(line, -1) {
		if loc[0] > last {
			nodes = append(nodes, Node{Kind: NodeText, Content: line[last:loc[0]]})
		}

		matched := line[loc[0]:loc[1]]
		switch {
		case strings.HasPrefix(matched, "**") && len(matched) >= 4:
			nodes = append(nodes, Node{Kind: NodeBold, Content: matched[2 : len(matched)-2]})
		case strings.HasPrefix(matched, "*"):
			nodes = append(nodes, Node{Kind: NodeItalic, Content: matched[1 : len(matched)-1]})
		case strings.HasPrefix(matched, "`"):
			nodes = append(nodes, Node{Kind: NodeCode, Content: matched[1 : len(matched)-1]})
		case strings.HasPrefix(matched, "["):
			if lm := linkPattern.FindStringSubmatch(matched); lm != nil {
				nodes = append(nodes, Node{Kind: NodeLink, Content: lm[1], URL: lm[2]})
			}
		default:
			// Bare URL; the link text is the URL itself.
			nodes = append(nodes, Node{Kind: NodeLink, Content: matched, URL: matched})
		}

		last = loc[1]
	}

	if last < len(line) {
		nodes = append(nodes, Node{Kind: NodeText, Content: line[last:]})
	}

	return nodes
}

// Parse splits text into line-based blocks. A line beginning with "- " becomes a single
// list item with its marker stripped, an empty line becomes a blank block, and every
// other line is a paragraph. Inline content of non-blank blocks goes through ParseInline.
func Parse(text string) []Block {
	lines := strings.Split(text, "\n")
	blocks := make([]Block, 0, len(lines))

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "- "):
			blocks = append(blocks, Block{Kind: BlockListItem, Nodes: ParseInline(line[2:])})
		case strings.TrimSpace(line) == "":
			blocks = append(blocks, Block{Kind: BlockBlank})
		default:
			blocks = append(blocks, Block{Kind: BlockParagraph, Nodes: ParseInline(line)})
		}
	}

	return blocks
}

// RenderHTML converts text into HTML for the widget templates. Consecutive list items are
// grouped under one <ul>. All literal content is escaped, so no raw HTML from the input
// ever reaches the browser.
func RenderHTML(text string) template.HTML {
	var sb strings.Builder
	inList := false

	for _, block := range Parse(text) {
		if inList && block.Kind != BlockListItem {
			sb.WriteString("</ul>")
			inList = false
		}

		switch block.Kind {
		case BlockListItem:
			if !inList {
				sb.WriteString("<ul>")
				inList = true
			}
			sb.WriteString("<li>")
			renderNodes(&sb, block.Nodes)
			sb.WriteString("</li>")
		case BlockBlank:
			sb.WriteString("<br>")
		case BlockParagraph:
			sb.WriteString("<p>")
			renderNodes(&sb, block.Nodes)
			sb.WriteString("</p>")
		}
	}
	if inList {
		sb.WriteString("</ul>")
	}

	return template.HTML(sb.String()) //nolint:gosec // all node content is escaped below
}

func renderNodes(sb *strings.Builder, nodes []Node) {
	for _, node := range nodes {
		content := template.HTMLEscapeString(node.Content)
		switch node.Kind {
		case NodeBold:
			sb.WriteString("<strong>" + content + "</strong>")
		case NodeItalic:
			sb.WriteString("<em>" + content + "</em>")
		case NodeCode:
			sb.WriteString("<code>" + content + "</code>")
		case NodeLink:
			url := template.HTMLEscapeString(node.URL)
			sb.WriteString(`<a href="` + url + `" target="_blank" rel="noopener noreferrer">` + content + "</a>")
		case NodeText:
			sb.WriteString(content)
		}
	}
}
