package taxonomy

import "cinsignal/internal/util"

// FlatEntry is one hierarchy node with its ancestor path, root first.
type FlatEntry struct {
	Level      int      `json:"level"`
	Code       int      `json:"code"`
	Title      string   `json:"title"`
	ParentCode *int     `json:"parent_code"`
	Path       []string `json:"path"`
	Active     bool     `json:"active"`
}

// Flatten lists every node depth-first, pre-order.
func Flatten(roots []*Node) []FlatEntry {
	out := make([]FlatEntry, 0, len(roots))
	return flatten(roots, nil, nil, out)
}

func flatten(nodes []*Node, parent *Node, path []string, out []FlatEntry) []FlatEntry {
	for _, node := range nodes {
		if node == nil {
			continue
		}
		current := make([]string, len(path), len(path)+1)
		copy(current, path)
		current = append(current, node.Title)

		entry := FlatEntry{
			Level:  node.Level,
			Code:   node.Code,
			Title:  node.Title,
			Path:   current,
			Active: node.Active,
		}
		if parent != nil {
			entry.ParentCode = util.IntPtr(parent.Code)
		}
		out = append(out, entry)

		if len(node.Childs) > 0 {
			out = flatten(node.Childs, node, current, out)
		}
	}
	return out
}
