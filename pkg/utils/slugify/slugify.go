package slugify

import (
	"strings"

	"github.com/gosimple/slug"
)

// stripped characters are dropped before slugging so "Dr. Smith's" becomes
// "dr-smiths" and "&" does not turn into "and".
const stripped = `*+~.()'"!:@&`

// Make derives a URL-safe slug from a title or name.
func Make(title string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(stripped, r) {
			return -1
		}
		return r
	}, title)
	return slug.Make(cleaned)
}
