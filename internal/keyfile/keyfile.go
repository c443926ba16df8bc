package keyfile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/FranksOps/indexnow/pkg/httpclient"
	"github.com/google/uuid"
)

var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9-]{8,128}$`)

var (
	// ErrInvalidKey is returned by Validate for keys outside the IndexNow format.
	ErrInvalidKey = errors.New("key must be 8-128 characters of a-z, A-Z, 0-9 or '-'")
	// ErrMismatch is returned by Verify when the key file holds a different key.
	ErrMismatch = errors.New("key file does not contain the key")
)

// Generate returns a new 32 character lowercase hex key.
func Generate() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Validate checks key against the IndexNow key format.
func Validate(key string) error {
	if !keyPattern.MatchString(key) {
		return ErrInvalidKey
	}
	return nil
}

// Location returns the default key file URL for host: https://{host}/{key}.txt
func Location(host, key string) string {
	return "https://" + host + "/" + key + ".txt"
}

// Verifier checks that a key file is published where search engines will look.
type Verifier struct {
	client *httpclient.Client
}

// NewVerifier returns a Verifier. A nil client gets httpclient defaults.
func NewVerifier(client *httpclient.Client) *Verifier {
	if client == nil {
		client = httpclient.New(httpclient.Config{})
	}
	return &Verifier{client: client}
}

// Verify fetches location and ensures it answers 200 with key as its content.
func (v *Verifier) Verify(ctx context.Context, location, key string) error {
	resp, err := v.client.Get(ctx, location)
	if err != nil {
		return fmt.Errorf("fetch key file: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch key file %s: unexpected status %d", location, resp.StatusCode)
	}

	// Tolerate a UTF-8 BOM and trailing newline from editors.
	body := bytes.TrimPrefix(resp.Body, []byte("\xef\xbb\xbf"))
	if strings.TrimSpace(string(body)) != key {
		return fmt.Errorf("%s: %w", location, ErrMismatch)
	}
	return nil
}
