package linkcrawl

import (
	"net/url"
	"strings"
)

// normalizeURL gives equivalent URLs one spelling for duplicate tracking:
// the fragment is dropped, query parameters are sorted by key, the host is
// lower-cased and an empty path becomes "/". Unparseable input is returned
// unchanged.
func normalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return normalize(u).String()
}

func normalize(u *url.URL) *url.URL {
	out := *u
	out.Fragment = ""
	out.RawFragment = ""
	out.Host = strings.ToLower(out.Host)
	out.RawQuery = out.Query().Encode()
	out.ForceQuery = false
	if out.Host != "" && out.Path == "" && out.Opaque == "" {
		out.Path = "/"
		out.RawPath = ""
	}
	return &out
}

// resolve turns a link target into an absolute, normalized http(s) URL.
// Relative targets need a base.
func resolve(raw string, base *url.URL) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, false
	}
	if !u.IsAbs() {
		if base == nil {
			return nil, false
		}
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Host == "" {
		return nil, false
	}
	return normalize(u), true
}

// isURLAllowed applies the domain rules of cfg to u. Blocked entries win,
// then the current-domain restriction, then the allow list.
func isURLAllowed(u *url.URL, cfg Config, currentDomain string) bool {
	host := strings.ToLower(u.Hostname())

	for _, blocked := range cfg.BlockedDomains {
		if blocked != "" && strings.Contains(host, strings.ToLower(blocked)) {
			return false
		}
	}

	if cfg.CurrentDomainOnly && currentDomain != "" {
		current, err := url.Parse(currentDomain)
		if err != nil {
			return false
		}
		return host == strings.ToLower(current.Hostname())
	}

	if len(cfg.AllowedDomains) > 0 {
		for _, allowed := range cfg.AllowedDomains {
			if allowed != "" && strings.Contains(host, strings.ToLower(allowed)) {
				return true
			}
		}
		return false
	}

	return true
}
