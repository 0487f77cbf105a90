package snapshot

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// AttributesKey holds an element's attributes in the raw variant.
const AttributesKey = "@attributes"

// RawObject is an insertion-ordered JSON object.
type RawObject = orderedmap.OrderedMap[string, any]

var urlSchemes = []string{"http://", "https://"}

// IsURL reports whether text starts with an http(s) scheme, ignoring case.
func IsURL(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, scheme := range urlSchemes {
		if strings.HasPrefix(lower, scheme) {
			return true
		}
	}
	return false
}

// BuildRaw produces the collapsed, link-free view of a document:
// {"<root>": value}. It reads the parsed element directly and is not
// derived from Build.
func BuildRaw(el *Element) *RawObject {
	out := orderedmap.New[string, any]()
	if el == nil {
		return out
	}
	out.Set(LocalName(el.Name), rawValue(el))
	return out
}

// rawValue returns a *RawObject for containers and a string or nil for
// leaves. Leaf attributes are not kept. Repeated sibling tags become one
// array under the first occurrence's key position.
func rawValue(el *Element) any {
	if len(el.Children) == 0 {
		text := strings.TrimSpace(el.Text())
		if text == "" || IsURL(text) {
			return nil
		}
		return text
	}

	obj := orderedmap.New[string, any]()
	if attrs := rawAttributes(el); attrs != nil {
		obj.Set(AttributesKey, attrs)
	}

	order := make([]string, 0, len(el.Children))
	grouped := make(map[string][]any, len(el.Children))
	for _, child := range el.Children {
		tag := LocalName(child.Name)
		if _, seen := grouped[tag]; !seen {
			order = append(order, tag)
		}
		grouped[tag] = append(grouped[tag], rawValue(child))
	}
	for _, tag := range order {
		values := grouped[tag]
		if len(values) == 1 {
			obj.Set(tag, values[0])
			continue
		}
		obj.Set(tag, values)
	}
	return obj
}

func rawAttributes(el *Element) *orderedmap.OrderedMap[string, string] {
	var attrs *orderedmap.OrderedMap[string, string]
	for _, a := range el.Attrs {
		if isNamespaceDecl(a.Name) {
			continue
		}
		if attrs == nil {
			attrs = orderedmap.New[string, string]()
		}
		attrs.Set(attrKey(a.Name), a.Value)
	}
	return attrs
}
