package blogservice

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// newPolicy allows the markup a rich text editor produces and strips
// scripts, event handlers and unsafe URLs. Inline styles are limited to
// text formatting properties with validated values.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowStyles("text-align", "color", "background-color", "font-weight", "font-style", "text-decoration").
		OnElements("p", "span", "div")
	p.AllowAttrs("class").Globally()

	return p
}

func (s *BlogService) sanitize(html string) string {
	return strings.TrimSpace(s.policy.Sanitize(html))
}
