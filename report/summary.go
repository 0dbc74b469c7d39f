package report

import (
	"fmt"
	"path"
	"sort"
	"strings"
)

// Node is one directory in the deletion summary tree. Counts cover files
// placed directly in this directory; totals are computed recursively.
type Node struct {
	Name        string
	DirectFiles int
	DirectBytes int64
	Subtrees    map[string]*Node
}

// NewTree returns an empty summary tree rooted at "/".
func NewTree() *Node {
	return &Node{Name: "/", Subtrees: make(map[string]*Node)}
}

// Add records a file under its directory, creating intermediate nodes.
func (n *Node) Add(filePath string, size int64) {
	dir := path.Dir(strings.TrimPrefix(filePath, "/"))

	node := n
	if dir != "." && dir != "/" {
		for _, segment := range strings.Split(dir, "/") {
			if segment == "" {
				continue
			}
			child, ok := node.Subtrees[segment]
			if !ok {
				child = &Node{Name: segment, Subtrees: make(map[string]*Node)}
				node.Subtrees[segment] = child
			}
			node = child
		}
	}

	node.DirectFiles++
	node.DirectBytes += size
}

// TotalFiles returns the file count of this node and all subtrees.
func (n *Node) TotalFiles() int {
	total := n.DirectFiles
	for _, child := range n.Subtrees {
		total += child.TotalFiles()
	}
	return total
}

// TotalBytes returns the byte count of this node and all subtrees.
func (n *Node) TotalBytes() int64 {
	total := n.DirectBytes
	for _, child := range n.Subtrees {
		total += child.TotalBytes()
	}
	return total
}

// Lines renders the tree as indented text, children sorted by name.
func (n *Node) Lines() []string {
	var lines []string
	n.render(&lines, 0)
	return lines
}

func (n *Node) render(lines *[]string, depth int) {
	indent := strings.Repeat("  ", depth)
	*lines = append(*lines, fmt.Sprintf("%s%s: %d files (%s)",
		indent, n.Name, n.TotalFiles(), FormatBytes(n.TotalBytes())))

	names := make([]string, 0, len(n.Subtrees))
	for name := range n.Subtrees {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		n.Subtrees[name].render(lines, depth+1)
	}
}

// FormatBytes renders a byte count in a human-readable unit.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
