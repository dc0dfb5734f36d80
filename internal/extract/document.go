package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page together with the URL it was fetched from.
type Document struct {
	doc  *goquery.Document
	base *url.URL
}

// Parse parses body as HTML. baseURL resolves relative links and may be empty.
func Parse(body, baseURL string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var base *url.URL
	if baseURL != "" {
		base, err = url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL %q: %w", baseURL, err)
		}
	}

	return &Document{doc: goquery.NewDocumentFromNode(root), base: base}, nil
}

// BaseURL returns the URL the document was parsed against, or "".
func (d *Document) BaseURL() string {
	if d.base == nil {
		return ""
	}
	return d.base.String()
}

// Selection returns the goquery root selection.
func (d *Document) Selection() *goquery.Selection {
	return d.doc.Selection
}

// Text returns the collapsed text of the first element matching selector.
// The boolean is false when nothing matched.
func (d *Document) Text(selector string) (string, bool) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	return collapseSpace(sel.Text()), true
}

// Links returns the absolute URLs found in attr of every element matching
// selector, in document order and without duplicates. Fragment-only,
// javascript:, mailto:, tel: and data: targets are skipped.
func (d *Document) Links(selector, attr string) []string {
	if attr == "" {
		attr = "href"
	}

	seen := make(map[string]struct{})
	var links []string
	d.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		raw, ok := s.Attr(attr)
		if !ok {
			return
		}
		link := d.resolve(raw)
		if link == "" {
			return
		}
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}

// resolve turns href into an absolute URL against the document base.
// It returns "" for targets that are not fetchable pages.
func (d *Document) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:"} {
		if strings.HasPrefix(lower, prefix) {
			return ""
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if d.base != nil {
		u = d.base.ResolveReference(u)
	}
	return u.String()
}

// ExtractLinks is Document.Links as a function.
func ExtractLinks(doc *Document, selector, attr string) []string {
	return doc.Links(selector, attr)
}

// ExtractFields is Document.Fields as a function.
func ExtractFields(doc *Document, tree Node) Record {
	return doc.Fields(tree)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
