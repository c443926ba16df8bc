package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/FranksOps/indexnow/internal/config"
	"github.com/FranksOps/indexnow/pkg/httpclient"
	"github.com/FranksOps/indexnow/pkg/indexnow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries state shared by subcommands once PersistentPreRunE has run.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:          "indexnow",
		Short:        "Notify search engines of changed URLs via IndexNow",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = newLogger(cmd.ErrOrStderr(), cfg)
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (yaml, toml or json)")
	pf.String("host", "", "host being notified, e.g. www.example.com")
	pf.String("key", "", "IndexNow key")
	pf.String("key-location", "", "URL of the published key file")
	pf.String("search-engine", "", "search engine base URL (default "+indexnow.DefaultSearchEngine+")")
	pf.String("host-header", "", "send this Host header instead of the endpoint's host")
	pf.String("user-agent", "", "User-Agent header (default "+httpclient.DefaultUserAgent+")")
	pf.Duration("timeout", 0, "HTTP timeout (default 30s)")
	pf.String("log-level", "", "debug, info, warn or error (default info)")
	pf.String("log-format", "", "text or json (default text)")

	for key, flag := range map[string]string{
		"host":          "host",
		"key":           "key",
		"key_location":  "key-location",
		"search_engine": "search-engine",
		"host_header":   "host-header",
		"user_agent":    "user-agent",
		"timeout":       "timeout",
		"log_level":     "log-level",
		"log_format":    "log-format",
	} {
		if err := a.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	root.AddCommand(newSubmitCmd(a), newVerifyCmd(a), newKeygenCmd(a))
	return root
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func (a *app) httpClient() *httpclient.Client {
	return httpclient.New(httpclient.Config{
		Timeout:   a.cfg.Timeout,
		UserAgent: a.cfg.UserAgent,
	})
}
