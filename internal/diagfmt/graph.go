package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"rbfmt/internal/meaning"
)

type treeNode struct {
	label    string
	children []*treeNode
}

type treeBlock struct {
	lines []string
	width int
	root  int
}

// FormatMeaningGraph draws the tree top-down, parents centred over their
// children. Field names are dropped; only kinds and atom texts are shown.
func FormatMeaningGraph(w io.Writer, tree *meaning.Tree) error {
	block := renderTree(graphNode(tree.Root))
	for _, l := range block.lines {
		if _, err := fmt.Fprintln(w, strings.TrimRight(l, " ")); err != nil {
			return err
		}
	}
	return nil
}

func graphNode(n *meaning.Node) *treeNode {
	if n.IsAtom() {
		return &treeNode{label: fmt.Sprintf("%s %q", n.Kind, n.AtomText())}
	}
	node := &treeNode{label: string(n.Kind)}
	for _, f := range n.Fields {
		switch f.Value.Kind {
		case meaning.ValueText:
			node.children = append(node.children, &treeNode{label: fmt.Sprintf("%s=%q", f.Name, f.Value.Text)})
		case meaning.ValueNode:
			node.children = append(node.children, graphNode(f.Value.Node))
		case meaning.ValueList:
			for _, c := range f.Value.List {
				node.children = append(node.children, graphNode(c))
			}
		}
	}
	return node
}

// fill pads s with spaces to width display cells.
func fill(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// renderTree converts a treeNode into a treeBlock. root is the column of the
// node's connector within the block's lines.
func renderTree(node *treeNode) treeBlock {
	label := node.label
	labelWidth := runewidth.StringWidth(label)

	if len(node.children) == 0 {
		return treeBlock{lines: []string{label}, width: labelWidth, root: labelWidth / 2}
	}

	const spacing = 3

	childBlocks := make([]treeBlock, len(node.children))
	positions := make([]int, len(node.children))
	height, total := 0, 0
	for i, child := range node.children {
		b := renderTree(child)
		childBlocks[i] = b
		height = max(height, len(b.lines))
		positions[i] = total + b.root
		total += b.width
		if i != len(node.children)-1 {
			total += spacing
		}
	}

	// корень встаёт над серединой между крайними детьми
	center := (positions[0] + positions[len(positions)-1]) / 2
	shift := center - labelWidth/2
	offset := 0
	if shift < 0 {
		offset = -shift
		shift = 0
	}
	rootPos := shift + labelWidth/2
	width := max(total+offset, shift+labelWidth, rootPos+1)

	connector := []byte(strings.Repeat(" ", width))
	connector[rootPos] = '|'
	for _, pos := range positions {
		pos += offset
		switch {
		case pos < rootPos:
			connector[pos] = '/'
		case pos > rootPos:
			connector[pos] = '\\'
		}
	}

	lines := make([]string, 0, height+2)
	lines = append(lines, fill(strings.Repeat(" ", shift)+label, width), string(connector))
	for row := range height {
		var sb strings.Builder
		sb.WriteString(strings.Repeat(" ", offset))
		for i, b := range childBlocks {
			line := ""
			if row < len(b.lines) {
				line = b.lines[row]
			}
			sb.WriteString(fill(line, b.width))
			if i != len(childBlocks)-1 {
				sb.WriteString(strings.Repeat(" ", spacing))
			}
		}
		lines = append(lines, fill(sb.String(), width))
	}
	return treeBlock{lines: lines, width: width, root: rootPos}
}
