package domain

import (
	"net/url"
	"strings"
)

const wwwPrefix = "www."

// NormalizeURL reduces a URL to the site key used for matching.
//
// Only the hostname matters: scheme, port, path and query are dropped, so
// "https://www.Example.com/x" and "example.com" share the key "example.com".
// Input that is not an absolute URL is treated as a bare hostname token.
//
//   - "https://WWW.Acme.com:8443/p?q=1" -> "acme.com"
//   - "shop.com/alt"                    -> "shop.com/alt"
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)

	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		if host := u.Hostname(); host != "" {
			return stripWWW(strings.ToLower(host))
		}
	}

	return stripWWW(strings.ToLower(raw))
}

// stripWWW removes leading "www." labels and surrounding blanks until the
// token is stable, which keeps NormalizeURL idempotent.
func stripWWW(host string) string {
	for {
		next := strings.TrimSpace(strings.TrimPrefix(host, wwwPrefix))
		if next == host {
			return host
		}
		host = next
	}
}

// CompanyID derives the stable identifier of a company from its display name.
// Every run of characters outside [a-z0-9] becomes one "_", edges included,
// so ids match the ones the browser extension generates.
// Example: "Acme, Inc." -> "acme_inc_"
func CompanyID(name string) string {
	var b strings.Builder
	name = strings.ToLower(strings.TrimSpace(name))
	b.Grow(len(name))

	inSep := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			inSep = false
			b.WriteRune(r)
			continue
		}
		if !inSep {
			b.WriteByte('_')
		}
		inSep = true
	}

	return b.String()
}
