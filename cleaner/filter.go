package cleaner

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FilterContent removes elements matching excludeTags, then keeps only the
// elements matching includeTags. Parse failures and empty filters return the
// input unchanged; an include set with no matches keeps the excluded-only
// document.
func FilterContent(rawHTML string, includeTags, excludeTags []string) string {
	if len(includeTags) == 0 && len(excludeTags) == 0 {
		return rawHTML
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, sel := range excludeTags {
		doc.Find(sel).Remove()
	}

	if len(includeTags) > 0 {
		if kept := doc.Find(strings.Join(includeTags, ", ")); kept.Length() > 0 {
			var sb strings.Builder
			kept.Each(func(_ int, s *goquery.Selection) {
				if h, err := goquery.OuterHtml(s); err == nil {
					sb.WriteString(h)
				}
			})
			return sb.String()
		}
	}

	out, err := doc.Html()
	if err != nil {
		return rawHTML
	}
	return out
}
