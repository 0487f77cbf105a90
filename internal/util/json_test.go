package util

import (
	"testing"

	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestMarshalJSONLeavesMarkupLiteral(t *testing.T) {
	om := orderedmap.New[string, any]()
	om.Set("b&b", "fish <&> chips")
	om.Set("path", `C:\u0026`)

	blob, err := MarshalJSON(map[string]any{"nested": om, "plain": "a<b"}, "")
	require.NoError(t, err)
	require.Equal(t, `{"nested":{"b&b":"fish <&> chips","path":"C:\\u0026"},"plain":"a<b"}`+"\n", string(blob))
}

func TestMarshalJSONIndent(t *testing.T) {
	blob, err := MarshalJSON(map[string]int{"a": 1}, "  ")
	require.NoError(t, err)
	require.Equal(t, "{\n  \"a\": 1\n}\n", string(blob))
}
