package snapshot

import (
	"encoding/json"
	"fmt"
)

// Node is one element of the lossless snapshot tree. A node with children
// is a container and carries no text; a node without children is a leaf
// whose Text is nil when the source element had no non-blank content.
type Node struct {
	Tag        string            `json:"tag"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Children   []*Node           `json:"children,omitempty"`
	Text       *string           `json:"text,omitempty"`
}

// Attr looks up an attribute by its exact key.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	v, ok := n.Attributes[name]
	return v, ok
}

// AttrValue is Attr collapsed to an optional value.
func (n *Node) AttrValue(name string) *string {
	v, ok := n.Attr(name)
	if !ok {
		return nil
	}
	return &v
}

// TextValue returns the leaf text, or nil for containers, textless leaves and a nil node.
func (n *Node) TextValue() *string {
	if n == nil || n.Text == nil {
		return nil
	}
	v := *n.Text
	return &v
}

func (n *Node) IsLeaf() bool {
	return n != nil && len(n.Children) == 0
}

// Decode reads a snapshot previously produced by json.Marshal on a Node.
func Decode(blob []byte) (*Node, error) {
	var root Node
	if err := json.Unmarshal(blob, &root); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if root.Tag == "" {
		return nil, fmt.Errorf("decode snapshot: root has no tag")
	}
	return &root, nil
}
