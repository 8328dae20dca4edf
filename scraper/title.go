package scraper

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// titleFromHTML returns the text of the first <title> element, or "" when
// the document has none.
func titleFromHTML(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			if z.Token().DataAtom != atom.Title {
				continue
			}
			if z.Next() != html.TextToken {
				return ""
			}
			return strings.TrimSpace(string(z.Text()))
		}
	}
}
