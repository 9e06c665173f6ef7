package template

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([\w.\-]+)\s*\}\}`)

// Render substitutes {{dotted.path}} placeholders in tpl with values looked up
// in payload. Missing paths and nil values render as the empty string; the
// renderer never fails, so a broken template degrades instead of aborting a
// delivery.
func Render(tpl string, payload map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(tpl, func(m string) string {
		path := placeholderRe.FindStringSubmatch(m)[1]
		val, ok := Lookup(payload, path)
		if !ok || val == nil {
			return ""
		}
		return fmt.Sprintf("%v", val)
	})
}

// Lookup walks payload along a dotted path. It returns false when any segment
// is missing or an intermediate value is not an object.
func Lookup(payload map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")

	var current any = payload
	for _, seg := range segments {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
