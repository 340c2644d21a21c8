package cleanup

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"

	"github.com/MiguelSanz/Anunzio/internal/pkg/env"
)

// Client asks the media service to remove the images of a deleted listing.
// The request is best-effort: no response contract is relied upon and a
// failure is logged only, never blocking or reversing the delete.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a cleanup client for the given media service base URL.
// An empty base URL disables the client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: httpClient,
	}
}

// NewClientFromEnv creates a cleanup client from MEDIA_API_BASE_URL.
func NewClientFromEnv() *Client {
	return NewClient(env.GetEnv("MEDIA_API_BASE_URL", ""), nil)
}

// Enabled reports whether a media service is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// Dispatch fires the cleanup request on its own goroutine and returns
// immediately.
func (c *Client) Dispatch(listingID uint) {
	if !c.Enabled() {
		fiberlog.Debugf("media cleanup skipped for listing %d: no media service configured", listingID)
		return
	}
	go func() {
		if err := c.Send(context.Background(), listingID); err != nil {
			fiberlog.Warnf("media cleanup for listing %d failed: %v", listingID, err)
		}
	}()
}

// Send performs one cleanup request synchronously.
func (c *Client) Send(ctx context.Context, listingID uint) error {
	url := fmt.Sprintf("%s/api/listings/%d/cleanup-images", c.baseURL, listingID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("media cleanup returned status %d", resp.StatusCode)
	}
	return nil
}
