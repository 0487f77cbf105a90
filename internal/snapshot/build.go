package snapshot

import "strings"

// Build converts a parsed element into a snapshot node, pre-order, keeping
// child order. Tags are reduced to local names; attributes are copied as-is
// apart from namespace declarations, which carry no item data.
func Build(el *Element) *Node {
	if el == nil {
		return nil
	}

	node := &Node{Tag: LocalName(el.Name)}
	for _, a := range el.Attrs {
		if isNamespaceDecl(a.Name) {
			continue
		}
		if node.Attributes == nil {
			node.Attributes = make(map[string]string, len(el.Attrs))
		}
		node.Attributes[attrKey(a.Name)] = a.Value
	}

	if len(el.Children) > 0 {
		node.Children = make([]*Node, 0, len(el.Children))
		for _, child := range el.Children {
			node.Children = append(node.Children, Build(child))
		}
		return node
	}

	if text := strings.TrimSpace(el.Text()); text != "" {
		node.Text = &text
	}
	return node
}
