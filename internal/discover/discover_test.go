package discover

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageFetcher struct {
	pages map[string]string
	err   error
}

func (f pageFetcher) Get(_ context.Context, u string) ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	body, ok := f.pages[u]
	if !ok {
		return nil, "", errors.New("not found")
	}
	return []byte(body), "text/html", nil
}

const home = `<html><body>
<a href="/careers/open-roles">Jobs</a>
<a href="/about-us">About</a>
<a href="https://acme.com/about">About (short)</a>
<a href="/products#top">Products</a>
<a href="/products">Products again</a>
<a href="https://twitter.com/acme/about">Twitter</a>
<a href="mailto:contact@acme.com">Mail</a>
<a href="/contact">Contact</a>
</body></html>`

func TestDiscover_MapsKeywordsInListOrder(t *testing.T) {
	f := pageFetcher{pages: map[string]string{"https://acme.com": home}}
	d, err := Discover(context.Background(), f, "https://acme.com", Options{})
	require.NoError(t, err)

	assert.Equal(t, "acme.com", d.Company)
	assert.Equal(t, "https://acme.com", d.RootURL)
	assert.Equal(t, []Page{
		{Section: "about", URL: "https://acme.com/about"},
		{Section: "products", URL: "https://acme.com/products"},
		{Section: "careers", URL: "https://acme.com/careers/open-roles"},
		{Section: "contact", URL: "https://acme.com/contact"},
	}, d.Pages)
}

func TestDiscover_CustomKeywordsAndAllow(t *testing.T) {
	f := pageFetcher{pages: map[string]string{"https://acme.com": home}}
	d, err := Discover(context.Background(), f, "https://acme.com", Options{
		Keywords: []string{"careers", "about"},
		Allow: func(_ context.Context, u string) bool {
			return u != "https://acme.com/about"
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []Page{
		{Section: "careers", URL: "https://acme.com/careers/open-roles"},
		{Section: "about", URL: "https://acme.com/about-us"},
	}, d.Pages)
}

func TestDiscover_HomepageFailure(t *testing.T) {
	f := pageFetcher{err: errors.New("connection refused")}
	_, err := Discover(context.Background(), f, "https://acme.com", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHomepage)
	var he *HomepageError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "connection refused", he.Err.Error())

	_, err = Discover(context.Background(), f, "acme", Options{})
	assert.ErrorIs(t, err, ErrHomepage)
}

func TestInternalLinks_DedupesAndFilters(t *testing.T) {
	root, _ := url.Parse("https://acme.com/")
	links, err := InternalLinks(root, []byte(home))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://acme.com/careers/open-roles",
		"https://acme.com/about-us",
		"https://acme.com/about",
		"https://acme.com/products",
		"https://acme.com/contact",
	}, links)
}

func TestInternalLinks_DropsTrackingParams(t *testing.T) {
	root, _ := url.Parse("https://acme.com")
	body := []byte(`<a href="/about?utm_source=news&utm_medium=email">a</a>
<a href="/about">b</a>
<a href="https://ACME.com/news?page=2&gclid=x">c</a>
<a href="/search?q=anvils">d</a>`)
	links, err := InternalLinks(root, body)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://acme.com/about",
		"https://acme.com/news?page=2",
		"https://acme.com/search?q=anvils",
	}, links)
}
