package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func leaf(tag, text string) *Node { return &Node{Tag: tag, Text: &text} }

func tree() *Node {
	return &Node{Tag: "root", Children: []*Node{
		{Tag: "informationProviderOfTradeItem", Children: []*Node{leaf("gln", "111"), leaf("partyName", "Provider")}},
		{Tag: "manufacturerOfTradeItem", Children: []*Node{leaf("gln", "222")}},
		{Tag: "allergen", Children: []*Node{leaf("allergenTypeCode", "AM")}},
		{Tag: "allergen", Children: []*Node{leaf("allergenTypeCode", "GL")}},
	}}
}

func TestFindAllPreOrder(t *testing.T) {
	hits := FindAll(tree(), "gln")
	require.Len(t, hits, 2)
	require.Equal(t, "111", *hits[0].Text)
	require.Equal(t, "222", *hits[1].Text)
}

func TestFindAllIncludesSelf(t *testing.T) {
	root := tree()
	hits := FindAll(root, "root")
	require.Len(t, hits, 1)
	require.Same(t, root, hits[0])
}

func TestFindAllSuffixIsCaseSensitive(t *testing.T) {
	require.Empty(t, FindAll(tree(), "GLN"))
	require.Len(t, FindAll(tree(), "TypeCode"), 2)
}

func TestFindAllDegenerateInputs(t *testing.T) {
	require.Empty(t, FindAll(nil, "gln"))
	require.Nil(t, FindFirst(nil, "gln"))
	require.Len(t, FindAll(tree(), ""), 10)
}

func TestFindAllMonotonicInSubtreeSize(t *testing.T) {
	root := tree()
	before := len(FindAll(root, "allergen"))
	root.Children = append(root.Children, &Node{Tag: "wrapper", Children: []*Node{{Tag: "allergen"}}})
	require.GreaterOrEqual(t, len(FindAll(root, "allergen")), before)
	require.Equal(t, before+1, len(FindAll(root, "allergen")))
}

func TestFindFirst(t *testing.T) {
	require.Equal(t, "AM", *FindFirst(tree(), "allergenTypeCode").Text)
	require.Nil(t, FindFirst(tree(), "missing"))
}

func TestFindFirstUnderScopesToParent(t *testing.T) {
	root := tree()
	require.Equal(t, "222", *FindFirstUnder(root, "manufacturerOfTradeItem", "gln").Text)
	require.Equal(t, "111", *FindFirstUnder(root, "informationProviderOfTradeItem", "gln").Text)
	require.Nil(t, FindFirstUnder(root, "manufacturerOfTradeItem", "partyName"))
	require.Nil(t, FindFirstUnder(nil, "a", "b"))
}

func TestScopedGroupQuery(t *testing.T) {
	var codes []string
	for _, group := range FindAll(tree(), "allergen") {
		codes = append(codes, *FindFirst(group, "allergenTypeCode").Text)
	}
	require.Equal(t, []string{"AM", "GL"}, codes)
}
