// Package discover gathers the URLs a submit run will report as changed.
package discover

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/FranksOps/indexnow/pkg/httpclient"
)

// Discoverer pulls URLs out of sitemaps, HTML pages and plain lists.
type Discoverer struct {
	client *httpclient.Client
	logger *slog.Logger
	// concurrency bounds nested sitemap fetches
	concurrency int
}

// New creates a Discoverer. Nil arguments fall back to defaults.
func New(client *httpclient.Client, logger *slog.Logger) *Discoverer {
	if client == nil {
		client = httpclient.New(httpclient.Config{})
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{
		client:      client,
		logger:      logger,
		concurrency: 4,
	}
}

// FromReader reads one URL per line. Blank lines and lines starting with '#'
// are skipped.
func FromReader(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	var urls []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read url list: %w", err)
	}
	return urls, nil
}

// Dedupe removes repeated URLs, keeping the first occurrence.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// FilterHost keeps URLs whose host is host. IndexNow rejects submissions
// containing URLs of other hosts.
func FilterHost(urls []string, host string) (kept []string, dropped []string) {
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || !strings.EqualFold(u.Hostname(), host) {
			dropped = append(dropped, raw)
			continue
		}
		kept = append(kept, raw)
	}
	return kept, dropped
}
