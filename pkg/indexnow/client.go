// Package indexnow notifies search engines of changed URLs using the
// IndexNow protocol (https://www.indexnow.org).
package indexnow

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultSearchEngine is the shared IndexNow endpoint; participating engines
// exchange submissions between themselves.
const DefaultSearchEngine = "https://api.indexnow.org"

// Observer is told about every completed Notify call.
type Observer interface {
	ObserveNotification(endpoint string, urls int, d time.Duration, err error)
}

// Client holds the notifying host's configuration.
// Setters may be called while Notify calls are running; those calls keep the
// configuration they started with.
type Client struct {
	mu           sync.RWMutex
	searchEngine string
	host         string
	key          string
	keyLocation  string
	transport    Transport
	logger       *slog.Logger
	observer     Observer
}

// New returns a Client for host authenticated by key, targeting
// DefaultSearchEngine over an HTTPTransport with default settings.
func New(host, key string) *Client {
	return &Client{
		searchEngine: DefaultSearchEngine,
		host:         host,
		key:          key,
		transport:    NewHTTPTransport(HTTPTransportConfig{}),
		logger:       slog.Default(),
	}
}

// SetSearchEngine changes the base URL used by subsequent Notify calls.
func (c *Client) SetSearchEngine(searchEngine string) {
	c.mu.Lock()
	c.searchEngine = searchEngine
	c.mu.Unlock()
}

// SetKeyLocation sets the URL where the key file is published.
func (c *Client) SetKeyLocation(keyLocation string) {
	c.mu.Lock()
	c.keyLocation = keyLocation
	c.mu.Unlock()
}

// SetTransport replaces the transport used by subsequent Notify calls.
func (c *Client) SetTransport(t Transport) {
	c.mu.Lock()
	c.transport = t
	c.mu.Unlock()
}

// SetLogger replaces the logger; nil restores slog.Default().
func (c *Client) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

// SetObserver registers o to be told about every completed Notify call.
func (c *Client) SetObserver(o Observer) {
	c.mu.Lock()
	c.observer = o
	c.mu.Unlock()
}

// Host returns the host being notified.
func (c *Client) Host() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.host
}

// Key returns the IndexNow key.
func (c *Client) Key() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

// KeyLocation returns the key file URL, or "" when unset.
func (c *Client) KeyLocation() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.keyLocation
}

// SearchEngine returns the base URL Notify posts under.
func (c *Client) SearchEngine() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searchEngine
}

// Endpoint is the URL Notify posts to.
func (c *Client) Endpoint() string {
	return c.SearchEngine() + "/IndexNow"
}

// Submission builds the payload Notify would send for urls.
func (c *Client) Submission(urls []string) Submission {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.submissionLocked(urls)
}

func (c *Client) submissionLocked(urls []string) Submission {
	list := make([]string, len(urls))
	copy(list, urls)
	return Submission{
		URLList:     list,
		Host:        c.host,
		Key:         c.key,
		KeyLocation: c.keyLocation,
	}
}

// Notify tells the search engine that urls have changed. The URLs are sent
// as given, in order, without validation; an empty list is sent as is.
// The transport's error, if any, is returned unchanged.
func (c *Client) Notify(ctx context.Context, urls []string) error {
	c.mu.RLock()
	endpoint := c.searchEngine + "/IndexNow"
	sub := c.submissionLocked(urls)
	transport := c.transport
	logger := c.logger
	observer := c.observer
	c.mu.RUnlock()

	logger.Debug("submitting urls", "endpoint", endpoint, "host", sub.Host, "count", len(sub.URLList))

	start := time.Now()
	err := transport.Post(ctx, endpoint, sub)
	elapsed := time.Since(start)

	if observer != nil {
		observer.ObserveNotification(endpoint, len(sub.URLList), elapsed, err)
	}
	if err != nil {
		logger.Debug("indexnow submission failed", "endpoint", endpoint, "err", err)
		return err
	}

	logger.Debug("indexnow submission accepted", "endpoint", endpoint, "duration", elapsed)
	return nil
}
