package svg

import "strings"

const (
	iconNameMarker = "icon-name"
	contextMarker  = "context"
)

// findMarker reads a text marker below scope. A marker is an element whose id or label equals key, or any
// element whose own text reads "key=value".
func findMarker(scope *element, key string) string {
	for el := range scope.all() {
		if el.id() != key && el.attr("label") != key {
			continue
		}
		if v := stripKey(el.textContent(), key); v != "" {
			return v
		}
	}

	prefix := key + "="
	for el := range scope.all() {
		text := strings.TrimSpace(el.text)
		if v, ok := strings.CutPrefix(text, prefix); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}

func stripKey(text, key string) string {
	if v, ok := strings.CutPrefix(text, key+"="); ok {
		return strings.TrimSpace(v)
	}
	return text
}
