package snapshot

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"unicode"
)

const xmlNamespaceURI = "http://www.w3.org/XML/1998/namespace"

var (
	ErrMalformedXML  = errors.New("malformed xml document")
	ErrEmptyDocument = errors.New("xml document has no root element")
)

// Element is the parsed source tree both snapshot builders read from.
// It is never mutated after Parse returns.
type Element struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Element
	text     string
}

// Text returns the raw character data collected directly under the element.
func (e *Element) Text() string {
	return e.text
}

// Parse decodes the whole document before returning so that a malformed
// input never yields a partial tree.
func Parse(r io.Reader) (*Element, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = true

	var stack []*Element
	var scopes []map[string]struct{}
	var root *Element
	rootClosed := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, fmt.Errorf("%w: element %s after document end", ErrMalformedXML, t.Name.Local)
			}
			scopes = append(scopes, declaredNamespaces(t.Attr))
			if err := checkBound(t, scopes); err != nil {
				return nil, err
			}
			elem := &Element{Name: t.Name, Attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, elem)
			} else {
				root = elem
			}
			stack = append(stack, elem)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
				scopes = scopes[:len(scopes)-1]
				if len(stack) == 0 {
					rootClosed = true
				}
			}

		case xml.CharData:
			if len(stack) == 0 {
				if !isBlank(string(t)) {
					return nil, fmt.Errorf("%w: character data outside root element", ErrMalformedXML)
				}
				continue
			}
			stack[len(stack)-1].text += string(t)
		}
	}

	if root == nil {
		return nil, ErrEmptyDocument
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, io.ErrUnexpectedEOF)
	}
	return root, nil
}

// declaredNamespaces collects the namespace URIs an element declares.
func declaredNamespaces(attrs []xml.Attr) map[string]struct{} {
	var out map[string]struct{}
	for _, a := range attrs {
		if !isNamespaceDecl(a.Name) {
			continue
		}
		if out == nil {
			out = make(map[string]struct{}, 1)
		}
		out[a.Value] = struct{}{}
	}
	return out
}

// checkBound rejects element and attribute prefixes with no declaration in
// scope. The decoder leaves such a prefix untranslated in Name.Space, so a
// space that matches no declared URI was never bound.
func checkBound(t xml.StartElement, scopes []map[string]struct{}) error {
	if !isBound(t.Name.Space, scopes) {
		return fmt.Errorf("%w: unbound prefix %q on element %s", ErrMalformedXML, t.Name.Space, t.Name.Local)
	}
	for _, a := range t.Attr {
		if isNamespaceDecl(a.Name) {
			continue
		}
		if !isBound(a.Name.Space, scopes) {
			return fmt.Errorf("%w: unbound prefix %q on attribute %s", ErrMalformedXML, a.Name.Space, a.Name.Local)
		}
	}
	return nil
}

func isBound(space string, scopes []map[string]struct{}) bool {
	if space == "" || space == xmlNamespaceURI {
		return true
	}
	for i := len(scopes) - 1; i >= 0; i-- {
		if _, ok := scopes[i][space]; ok {
			return true
		}
	}
	return false
}

// ParseBytes is Parse over an in-memory blob.
func ParseBytes(blob []byte) (*Element, error) {
	return Parse(bytes.NewReader(blob))
}

func isBlank(data string) bool {
	for _, r := range data {
		if r == '\uFEFF' {
			continue
		}
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
