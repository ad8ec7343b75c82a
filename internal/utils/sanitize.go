package utils

import "github.com/microcosm-cc/bluemonday"

// textPolicy strips every HTML element, including the contents of script
// and style tags, leaving only plain text.
var textPolicy = bluemonday.StrictPolicy()

// SanitizeText removes HTML markup from user-supplied text before it is stored
func SanitizeText(s string) string {
	return textPolicy.Sanitize(s)
}
