package cleaner

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// ValidateSelector reports whether selector, possibly a comma-separated
// group, parses. The API checks this before launching a browser so a typo
// does not cost a full scrape.
func ValidateSelector(selector string) error {
	_, err := cascadia.ParseGroup(selector)
	return err
}

// ApplyCSSSelector returns the concatenated outer HTML of every element in
// rawHTML matching selector. With no match the input comes back unchanged.
func ApplyCSSSelector(rawHTML string, selector string) (string, error) {
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}

	nodes := cascadia.QueryAll(doc, sel)
	if len(nodes) == 0 {
		return rawHTML, nil
	}

	var sb strings.Builder
	for _, n := range nodes {
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}
