// Package capture builds partial profile records from external sources: a
// public profile page or an uploaded resume PDF. Captured records carry the
// basics only; the structured sections are filled in by later ingestion.
package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/sreejagatab/linkedin-qbot/internal/profile"
)

// maxPageBytes bounds how much of a profile page is read.
const maxPageBytes = 2 << 20

// HTTPClient is the outbound client used to fetch profile pages.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// FromURL fetches a public profile page and extracts a partial record from
// its metadata. The identifier comes from the /in/<id> path segment when
// present, otherwise from the last path segment.
func FromURL(ctx context.Context, client HTTPClient, pageURL string) (profile.Record, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return profile.Record{}, fmt.Errorf("parsing profile URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return profile.Record{}, fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return profile.Record{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", "qbot/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return profile.Record{}, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return profile.Record{}, fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	meta, err := parsePage(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return profile.Record{}, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	name := meta.ogTitle
	if name == "" {
		name = meta.title
	}
	if name == "" {
		return profile.Record{}, fmt.Errorf("no name found on %s", pageURL)
	}

	return profile.Record{
		Identifier: identifierFromPath(u.Path),
		Basics: profile.Basics{
			Name:       cleanTitle(name),
			Headline:   meta.ogDescription,
			ProfileURL: pageURL,
			CapturedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

type pageMeta struct {
	title         string
	ogTitle       string
	ogDescription string
}

// parsePage walks the HTML tree collecting the <title> text and the
// og:title / og:description meta properties.
func parsePage(r io.Reader) (pageMeta, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return pageMeta{}, err
	}

	var meta pageMeta
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && meta.title == "" {
					meta.title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				var property, content string
				for _, a := range n.Attr {
					switch a.Key {
					case "property", "name":
						property = a.Val
					case "content":
						content = a.Val
					}
				}
				switch property {
				case "og:title":
					meta.ogTitle = strings.TrimSpace(content)
				case "og:description":
					meta.ogDescription = strings.TrimSpace(content)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return meta, nil
}

// identifierFromPath derives a profile identifier from a URL path,
// preferring the segment after /in/.
func identifierFromPath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if seg == "in" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1]
		}
	}
	if len(segments) > 0 && segments[len(segments)-1] != "" {
		return segments[len(segments)-1]
	}
	return ""
}

// cleanTitle strips the common " | SiteName" and " - SiteName" suffixes
// that page titles carry.
func cleanTitle(title string) string {
	for _, sep := range []string{" | ", " – ", " - "} {
		if idx := strings.Index(title, sep); idx > 0 {
			title = title[:idx]
		}
	}
	return strings.TrimSpace(title)
}
