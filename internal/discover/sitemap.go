package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/oxffaa/gopher-parse-sitemap"
	"golang.org/x/sync/errgroup"
)

// maxSitemapDepth stops runaway sitemap indexes that point at each other.
const maxSitemapDepth = 3

// FromSitemap fetches a sitemap XML or sitemap index and recursively extracts all URLs.
// URLs keep document order; nested sitemaps are concatenated in index order.
func (d *Discoverer) FromSitemap(ctx context.Context, sitemapURL string) ([]string, error) {
	return d.fetchSitemap(ctx, sitemapURL, 0)
}

func (d *Discoverer) fetchSitemap(ctx context.Context, sitemapURL string, depth int) ([]string, error) {
	d.logger.Debug("fetching sitemap", "url", sitemapURL, "depth", depth)

	resp, err := d.client.Get(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("bad status code: %d", resp.StatusCode)
	}

	var urls []string
	err = sitemap.Parse(bytes.NewReader(resp.Body), func(e sitemap.Entry) error {
		urls = append(urls, e.GetLocation())
		return nil
	})
	if err == nil && len(urls) > 0 {
		return urls, nil
	}

	// It might be a sitemap index or invalid XML
	var nested []string
	indexErr := sitemap.ParseIndex(bytes.NewReader(resp.Body), func(e sitemap.IndexEntry) error {
		nested = append(nested, e.GetLocation())
		return nil
	})
	if indexErr != nil || len(nested) == 0 {
		if err == nil {
			err = indexErr
		}
		if err == nil {
			err = errors.New("no entries")
		}
		return nil, fmt.Errorf("failed to parse as sitemap or index: %w", err)
	}

	if depth >= maxSitemapDepth {
		return nil, fmt.Errorf("sitemap index nesting deeper than %d at %s", maxSitemapDepth, sitemapURL)
	}

	parts := make([][]string, len(nested))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, nestedURL := range nested {
		g.Go(func() error {
			found, fetchErr := d.fetchSitemap(gCtx, nestedURL, depth+1)
			if fetchErr != nil {
				d.logger.Warn("failed to fetch nested sitemap", "url", nestedURL, "err", fetchErr)
				return nil
			}
			parts[i] = found
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range parts {
		urls = append(urls, p...)
	}
	return urls, nil
}
