package pagefetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is the subset of a fetched document the content analysis uses.
type Page struct {
	URL          string
	Text         string
	HasJSONLD    bool
	HasMicrodata bool
	HasOpenGraph bool
}

// Fetcher downloads and inspects web pages.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// ErrBlockedAddress is returned when a page resolves to a loopback,
// private, link-local or otherwise non-public address.
var ErrBlockedAddress = errors.New("destination address not allowed")

// New builds a Fetcher that only dials public addresses. Non-positive values
// fall back to 10s and 512KiB.
func New(timeout time.Duration, maxBytes int64) *Fetcher {
	return newFetcher(timeout, maxBytes, false)
}

func newFetcher(timeout time.Duration, maxBytes int64, allowPrivate bool) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if maxBytes <= 0 {
		maxBytes = 512 * 1024
	}
	dialer := &net.Dialer{Timeout: timeout}
	if !allowPrivate {
		dialer.Control = publicOnly
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	// A proxy would be the dialed address, hiding the real destination.
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &Fetcher{
		client:   &http.Client{Timeout: timeout, Transport: transport},
		maxBytes: maxBytes,
	}
}

// publicOnly runs after DNS resolution for every dial, redirects included.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil || blockedIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

var sharedAddressSpace = &net.IPNet{IP: net.IPv4(100, 64, 0, 0), Mask: net.CIDRMask(10, 32)}

func blockedIP(ip net.IP) bool {
	return ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() ||
		ip.IsUnspecified() ||
		sharedAddressSpace.Contains(ip)
}

// Fetch retrieves url and extracts visible text plus structured-data signals.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("User-Agent", "visibility-backend/1.0 (+content-analysis)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Page{}, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}

	page, err := Parse(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return Page{}, err
	}
	page.URL = url
	return page, nil
}

// Parse walks an HTML document and collects text and schema signals.
func Parse(r io.Reader) (Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Page{}, fmt.Errorf("parse page: %w", err)
	}
	var page Page
	var text strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			if hasAttr(n, "itemscope") {
				page.HasMicrodata = true
			}
			switch n.DataAtom {
			case atom.Script:
				if strings.EqualFold(attr(n, "type"), "application/ld+json") {
					page.HasJSONLD = true
				}
				return
			case atom.Style, atom.Noscript, atom.Template:
				return
			case atom.Meta:
				prop := attr(n, "property")
				if prop == "" {
					prop = attr(n, "name")
				}
				if strings.HasPrefix(strings.ToLower(prop), "og:") {
					page.HasOpenGraph = true
				}
			}
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				if text.Len() > 0 {
					text.WriteByte(' ')
				}
				text.WriteString(strings.Join(strings.Fields(s), " "))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	page.Text = text.String()
	return page, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return true
		}
	}
	return false
}
