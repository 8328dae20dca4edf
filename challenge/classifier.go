package challenge

import "strings"

// BlockMarkers are the markup fragments that mean the protective service is
// still in the way. Matching is case-sensitive.
var BlockMarkers = []string{
	"cf-error",
	"Just a moment...",
	"Verifying you are human",
	"Attention Required",
}

// MarkerUnresolved is reported by Classify when the poll never saw the
// interstitial title disappear.
const MarkerUnresolved = "unresolved"

// Classify reports whether the page is blocked and why. A page is blocked
// when the poll did not resolve, or when html contains any BlockMarkers
// entry. The content check applies even when resolved is true.
func Classify(html string, resolved bool) (blocked bool, marker string) {
	if !resolved {
		return true, MarkerUnresolved
	}
	for _, m := range BlockMarkers {
		if strings.Contains(html, m) {
			return true, m
		}
	}
	return false, ""
}

// Blocked is the boolean form of Classify.
func Blocked(html string, resolved bool) bool {
	blocked, _ := Classify(html, resolved)
	return blocked
}
