package rules

import (
	"net/url"
	"strings"

	"github.com/postdeck/gatehouse/postgate/engine"
)

// number of outbound links across the post: every link in the body text, plus
// the submission URL itself when present
func countLinks(c *engine.PostContext) int {
	n := len(engine.ExtractLinks(c.Post.Body))
	if c.Post.URL != "" {
		n++
	}
	return n
}

// parses the hostname out of a (possibly schemeless) URL, normalized to
// lowercase with any "www." prefix stripped
func imageHost(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www."), nil
}
