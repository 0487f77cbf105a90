package snapshot

import (
	"encoding/xml"
	"strings"
)

// StripNamespace reduces a qualified tag to its local name. Both the
// Clark form "{urn:...}local" and the prefixed form "prefix:local" are
// accepted; anything else is returned unchanged.
func StripNamespace(tag string) string {
	if strings.HasPrefix(tag, "{") {
		if i := strings.IndexByte(tag, '}'); i >= 0 {
			return tag[i+1:]
		}
	}
	if i := strings.LastIndexByte(tag, ':'); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

// LocalName returns the namespace-free name of a decoded XML name.
func LocalName(name xml.Name) string {
	return StripNamespace(name.Local)
}

func attrKey(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return "{" + name.Space + "}" + name.Local
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}
