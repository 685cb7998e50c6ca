package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	assert.Equal(t, "Reunion 2026", Text("<b>Reunion</b> 2026"))
	assert.Equal(t, "Tom & Jerry", Text("Tom & Jerry"))
	assert.Equal(t, "", Text("<script>alert(1)</script>"))
}

func TestHTMLKeepsFormatting(t *testing.T) {
	out := HTML(`<p onclick="x()">Hello <strong>all</strong><script>bad()</script></p>`)
	assert.Contains(t, out, "<strong>all</strong>")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "script")
}

func TestTextSliceDropsEmpty(t *testing.T) {
	assert.Equal(t, []string{"go", "career"}, TextSlice([]string{"go", "<i></i>", " career "}))
	assert.Nil(t, TextSlice(nil))
}
