package storefront

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Check names.
const (
	CheckTitle       = "title"
	CheckDescription = "meta_description"
	CheckViewport    = "mobile_viewport"
	CheckShareImage  = "share_image"
	CheckProducts    = "product_links"
	CheckCart        = "cart_link"
)

// Check is one pass/fail readiness check.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Report is the outcome of a storefront audit.
type Report struct {
	URL             string  `json:"url"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	ProductLinks    int     `json:"productLinks"`
	CollectionLinks int     `json:"collectionLinks"`
	Rendered        bool    `json:"rendered"`
	Checks          []Check `json:"checks"`
	Score           int     `json:"score"`
	text            string
}

// Failed returns the checks that did not pass.
func (r *Report) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// Analyze inspects storefront HTML served from pageURL.
func Analyze(pageURL, html string) (*Report, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Host == "" {
		return nil, &Error{URL: pageURL, Message: "invalid base URL", Cause: err}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &Error{URL: pageURL, Message: "failed to parse HTML", Cause: err}
	}

	r := &Report{
		URL:         pageURL,
		Title:       strings.TrimSpace(doc.Find("head title").First().Text()),
		Description: metaContent(doc, `meta[name="description"]`),
	}

	products, collections := make(map[string]bool), make(map[string]bool)
	hasCart := false
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		link, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(link)
		if abs.Host != base.Host {
			return
		}
		path := strings.TrimSuffix(abs.Path, "/")
		switch {
		case strings.Contains(path, "/products/"):
			products[path] = true
		case strings.Contains(path, "/collections/"):
			collections[path] = true
		case path == "/cart" || strings.HasSuffix(path, "/cart"):
			hasCart = true
		}
	})
	if doc.Find(`form[action$="/cart/add"], form[action$="/cart"]`).Length() > 0 {
		hasCart = true
	}
	r.ProductLinks = len(products)
	r.CollectionLinks = len(collections)

	viewport := metaContent(doc, `meta[name="viewport"]`)
	shareImage := metaContent(doc, `meta[property="og:image"]`)

	r.Checks = []Check{
		check(CheckTitle, r.Title != "", "page has a title", "add a <title> to the home page"),
		check(CheckDescription, r.Description != "", "meta description present", "add a meta description for search results"),
		check(CheckViewport, strings.Contains(viewport, "width=device-width"), "responsive viewport set", "theme is not mobile ready: no device-width viewport"),
		check(CheckShareImage, shareImage != "", "social share image set", "add an og:image so shared links show a preview"),
		check(CheckProducts, r.ProductLinks > 0, fmt.Sprintf("%d products linked from home", r.ProductLinks), "no products are linked from the home page"),
		check(CheckCart, hasCart, "cart is reachable", "no cart link or add-to-cart form found"),
	}
	passed := 0
	for _, c := range r.Checks {
		if c.Passed {
			passed++
		}
	}
	r.Score = (200*passed + len(r.Checks)) / (2 * len(r.Checks))

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	r.text = strings.Join(strings.Fields(body.Text()), " ")
	return r, nil
}

func check(name string, ok bool, pass, fail string) Check {
	if ok {
		return Check{Name: name, Passed: true, Detail: pass}
	}
	return Check{Name: name, Detail: fail}
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(v)
}
