package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// strictPolicy removes all markup. Used for titles, tags, names and reasons.
	strictPolicy = bluemonday.StrictPolicy()

	// ugcPolicy keeps basic formatting in post bodies, comments and descriptions.
	ugcPolicy = bluemonday.UGCPolicy()
)

// Text strips all HTML and returns plain, unescaped text.
func Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(input)))
}

// HTML sanitizes user generated content, keeping safe formatting tags.
func HTML(input string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(input))
}

// TextSlice sanitizes each string and drops the ones left empty.
func TextSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	out := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if s := Text(input); s != "" {
			out = append(out, s)
		}
	}
	return out
}
