package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/FranksOps/indexnow/internal/discover"
	"github.com/FranksOps/indexnow/internal/metrics"
	"github.com/FranksOps/indexnow/internal/report"
	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type submitOptions struct {
	file     string
	sitemaps []string
	pages    []string
	dryRun   bool
	allHosts bool
}

func newSubmitCmd(a *app) *cobra.Command {
	opts := &submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit [url...]",
		Short: "Submit changed URLs in a single IndexNow request",
		Long: `Collects URLs from arguments, --file, --sitemap and --page sources,
removes duplicates and URLs of other hosts, and sends them in one request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSubmit(cmd.Context(), cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "file", "f", "", "read URLs from file, one per line ('-' for stdin)")
	f.StringArrayVar(&opts.sitemaps, "sitemap", nil, "collect URLs from a sitemap or sitemap index (repeatable)")
	f.StringArrayVar(&opts.pages, "page", nil, "collect same-host links from an HTML page (repeatable)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "print the request body instead of sending it")
	f.BoolVar(&opts.allHosts, "all-hosts", false, "keep URLs whose host differs from --host")
	f.StringP("output", "o", "", "report format: text or json (default text)")
	f.String("metrics-file", "", "write Prometheus metrics to this file after submitting")

	_ = a.v.BindPFlag("output", f.Lookup("output"))
	_ = a.v.BindPFlag("metrics_file", f.Lookup("metrics-file"))

	return cmd
}

func (a *app) collectURLs(ctx context.Context, in io.Reader, opts *submitOptions, args []string) ([]string, error) {
	urls := append([]string(nil), args...)

	if opts.file != "" {
		r := in
		if opts.file != "-" {
			fh, err := os.Open(opts.file)
			if err != nil {
				return nil, fmt.Errorf("open url list: %w", err)
			}
			defer fh.Close()
			r = fh
		}
		found, err := discover.FromReader(r)
		if err != nil {
			return nil, err
		}
		urls = append(urls, found...)
	}

	d := discover.New(a.httpClient(), a.logger)
	for _, sm := range opts.sitemaps {
		found, err := d.FromSitemap(ctx, sm)
		if err != nil {
			return nil, fmt.Errorf("sitemap %s: %w", sm, err)
		}
		a.logger.Info("collected sitemap urls", "sitemap", sm, "count", len(found))
		urls = append(urls, found...)
	}
	for _, page := range opts.pages {
		found, err := d.FromPage(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("page %s: %w", page, err)
		}
		a.logger.Info("collected page links", "page", page, "count", len(found))
		urls = append(urls, found...)
	}

	return discover.Dedupe(urls), nil
}

func (a *app) newClient() *indexnow.Client {
	c := indexnow.New(a.cfg.Host, a.cfg.Key)
	c.SetSearchEngine(a.cfg.SearchEngine)
	if a.cfg.KeyLocation != "" {
		c.SetKeyLocation(a.cfg.KeyLocation)
	}
	c.SetTransport(indexnow.NewHTTPTransport(indexnow.HTTPTransportConfig{
		Timeout:    a.cfg.Timeout,
		UserAgent:  a.cfg.UserAgent,
		HostHeader: a.cfg.HostHeader,
	}))
	c.SetLogger(a.logger)
	c.SetObserver(metrics.Observer{})
	return c
}

func (a *app) runSubmit(ctx context.Context, cmd *cobra.Command, opts *submitOptions, args []string) error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	urls, err := a.collectURLs(ctx, cmd.InOrStdin(), opts, args)
	if err != nil {
		return err
	}

	var dropped []string
	if !opts.allHosts {
		urls, dropped = discover.FilterHost(urls, a.cfg.Host)
		for _, u := range dropped {
			a.logger.Warn("skipping url of another host", "url", u, "host", a.cfg.Host)
		}
	}
	if len(urls) == 0 {
		return errors.New("no urls to submit")
	}

	client := a.newClient()
	summary := report.Summary{
		ID:        uuid.NewString(),
		Endpoint:  client.Endpoint(),
		Host:      client.Host(),
		URLCount:  len(urls),
		Dropped:   len(dropped),
		DryRun:    opts.dryRun,
		StartTime: time.Now().UTC(),
	}
	logger := a.logger.With("submission_id", summary.ID)

	if opts.dryRun {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(client.Submission(urls)); err != nil {
			return fmt.Errorf("encode submission: %w", err)
		}
		logger.Debug("dry run complete", "endpoint", summary.Endpoint, "count", len(urls))
		// stdout carries the payload, so the summary goes to stderr.
		return report.Write(cmd.ErrOrStderr(), a.cfg.Output, summary)
	}

	logger.Info("submitting urls", "endpoint", summary.Endpoint, "count", len(urls))
	notifyErr := client.Notify(ctx, urls)
	summary.Duration = time.Since(summary.StartTime)
	summary.SetResult(notifyErr)

	if err := report.Write(cmd.OutOrStdout(), a.cfg.Output, summary); err != nil {
		return err
	}

	if a.cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
			logger.Error("failed to write metrics", "path", a.cfg.MetricsFile, "err", err)
		}
	}

	if notifyErr != nil {
		return fmt.Errorf("submission failed: %w", notifyErr)
	}
	return nil
}
