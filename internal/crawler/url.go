package crawler

import (
	"fmt"
	"net/url"
)

// ResolveURL resolves an href found in archive markup against the site base
// URL. Season and episode links on the archive are relative
// ("showgame.php?game_id=..."), but absolute hrefs pass through unchanged.
func ResolveURL(base *url.URL, href string) (string, error) {
	if href == "" {
		return "", fmt.Errorf("empty href")
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	if base == nil {
		return ref.String(), nil
	}
	return base.ResolveReference(ref).String(), nil
}
