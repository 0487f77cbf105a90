package snapshot

import "strings"

// FindAll walks the subtree rooted at node depth-first, pre-order, and
// collects every node whose tag ends with suffix (case-sensitive). The
// node itself is included when it matches. A nil node yields no matches
// and an empty suffix matches every node.
func FindAll(node *Node, suffix string) []*Node {
	var hits []*Node
	walk(node, func(n *Node) bool {
		if strings.HasSuffix(n.Tag, suffix) {
			hits = append(hits, n)
		}
		return true
	})
	return hits
}

// FindFirst returns the first FindAll match, or nil.
func FindFirst(node *Node, suffix string) *Node {
	var hit *Node
	walk(node, func(n *Node) bool {
		if strings.HasSuffix(n.Tag, suffix) {
			hit = n
			return false
		}
		return true
	})
	return hit
}

// FindFirstUnder scopes a lookup to a parent: it returns the first node
// matching childSuffix inside the first parentSuffix match that has one.
// Use it for tags that recur under several distinct parents.
func FindFirstUnder(node *Node, parentSuffix, childSuffix string) *Node {
	for _, parent := range FindAll(node, parentSuffix) {
		for _, child := range parent.Children {
			if hit := FindFirst(child, childSuffix); hit != nil {
				return hit
			}
		}
	}
	return nil
}

// walk visits nodes pre-order until visit returns false.
func walk(node *Node, visit func(*Node) bool) bool {
	if node == nil {
		return true
	}
	if !visit(node) {
		return false
	}
	for _, child := range node.Children {
		if !walk(child, visit) {
			return false
		}
	}
	return true
}
