// Package discover finds a company's key pages (about, products, careers...)
// among the links on its homepage.
package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// TargetKeywords are the section names looked for in link URLs, in the
// order sections are reported.
var TargetKeywords = []string{
	"about", "team", "mission", "values", "services", "solutions", "products",
	"industries", "clients", "case-studies", "projects", "blog", "insights",
	"resources", "news", "careers", "jobs", "contact",
}

// ErrHomepage matches any *HomepageError.
var ErrHomepage = errors.New("failed to retrieve homepage")

// HomepageError reports that the company homepage could not be read.
type HomepageError struct {
	URL string
	Err error
}

func (e *HomepageError) Error() string { return "failed to retrieve homepage: " + e.Err.Error() }

func (e *HomepageError) Unwrap() error { return e.Err }

func (e *HomepageError) Is(target error) bool { return target == ErrHomepage }

// Fetcher retrieves a page body.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, string, error)
}

// Page is one discovered section.
type Page struct {
	Section string
	URL     string
}

// Discovery is the outcome of scanning a homepage.
type Discovery struct {
	Company string
	RootURL string
	Pages   []Page
}

// Options tunes discovery. Zero value uses TargetKeywords and allows every page.
type Options struct {
	Keywords []string
	// Allow, if set, filters candidate pages (e.g. robots.txt).
	Allow func(ctx context.Context, pageURL string) bool
}

// Discover fetches companyURL and maps each keyword to one internal link.
func Discover(ctx context.Context, f Fetcher, companyURL string, opts Options) (Discovery, error) {
	root, err := url.Parse(companyURL)
	if err != nil || root.Host == "" {
		return Discovery{}, &HomepageError{URL: companyURL, Err: fmt.Errorf("invalid url %q", companyURL)}
	}
	body, _, err := f.Get(ctx, companyURL)
	if err != nil {
		return Discovery{}, &HomepageError{URL: companyURL, Err: err}
	}
	links, err := InternalLinks(root, body)
	if err != nil {
		return Discovery{}, &HomepageError{URL: companyURL, Err: err}
	}

	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = TargetKeywords
	}
	d := Discovery{Company: root.Host, RootURL: companyURL}
	for _, kw := range keywords {
		best := ""
		for _, link := range links {
			if !strings.Contains(strings.ToLower(link), kw) {
				continue
			}
			if opts.Allow != nil && !opts.Allow(ctx, link) {
				log.Debug().Str("url", link).Msg("disallowed by robots.txt")
				continue
			}
			if best == "" || len(link) < len(best) || (len(link) == len(best) && link < best) {
				best = link
			}
		}
		if best != "" {
			d.Pages = append(d.Pages, Page{Section: kw, URL: best})
		}
	}
	log.Info().Str("company", d.Company).Int("pages", len(d.Pages)).Msg("discovered key pages")
	return d, nil
}

// InternalLinks returns the distinct absolute links in body that point at
// root's host, in document order, without fragments.
func InternalLinks(root *url.URL, body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	seen := make(map[string]bool)
	var out []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := root.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			return
		}
		if !strings.EqualFold(abs.Host, root.Host) {
			return
		}
		normalizeLink(abs)
		link := abs.String()
		if seen[link] {
			return
		}
		seen[link] = true
		out = append(out, link)
	})
	return out, nil
}

// trackingParams are dropped so that campaign links collapse onto the page.
var trackingParams = []string{"utm_source", "utm_medium", "utm_campaign", "utm_term", "utm_content", "utm_id", "gclid", "fbclid"}

func normalizeLink(u *url.URL) {
	u.Fragment = ""
	u.RawFragment = ""
	u.Host = strings.ToLower(u.Host)
	if u.RawQuery == "" {
		return
	}
	q := u.Query()
	dropped := false
	for _, p := range trackingParams {
		if q.Has(p) {
			q.Del(p)
			dropped = true
		}
	}
	if dropped {
		u.RawQuery = q.Encode()
	}
}
