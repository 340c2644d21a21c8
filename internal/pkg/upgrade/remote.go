package upgrade

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/sony/gobreaker/v2"

	"github.com/MiguelSanz/Anunzio/internal/pkg/env"
)

// RemoteStrategy performs the authorized upgrade against the billing API.
// It tries a fixed, ordered list of at most two base URLs (the primary and
// an absolute fallback host for environments where the API host differs
// from the page origin). This is not a retry-with-backoff loop: first
// success wins and the last failure is retained. A circuit breaker sits in
// front so a flapping billing API stops being hammered and callers fall
// through to fallback policy sooner.
type RemoteStrategy struct {
	bases      []string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
}

type upgradeRequestBody struct {
	PlanCode  string `json:"planCode"`
	UseCredit bool   `json:"useCredit"`
}

// NewRemoteStrategy creates a remote strategy over the given base URLs.
// Empty entries are dropped; with no usable base the strategy reports the
// upgrade service as disabled.
func NewRemoteStrategy(bases []string, httpClient *http.Client) *RemoteStrategy {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	cleaned := make([]string, 0, len(bases))
	for _, b := range bases {
		b = strings.TrimRight(strings.TrimSpace(b), "/")
		if b != "" {
			cleaned = append(cleaned, b)
		}
	}

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "upgrade-api",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &RemoteStrategy{
		bases:      cleaned,
		httpClient: httpClient,
		breaker:    cb,
	}
}

// NewRemoteStrategyFromEnv builds the strategy from UPGRADE_API_BASE_URL and
// UPGRADE_API_FALLBACK_URL.
func NewRemoteStrategyFromEnv() *RemoteStrategy {
	return NewRemoteStrategy([]string{
		env.GetEnv("UPGRADE_API_BASE_URL", ""),
		env.GetEnv("UPGRADE_API_FALLBACK_URL", ""),
	}, nil)
}

// Enabled reports whether at least one upgrade endpoint is configured.
func (s *RemoteStrategy) Enabled() bool {
	return len(s.bases) > 0
}

// Upgrade executes the primary path.
func (s *RemoteStrategy) Upgrade(ctx context.Context, req Request) Result {
	if strings.TrimSpace(req.BearerToken) == "" {
		return Failure(ErrNotAuthenticated)
	}
	if !s.Enabled() {
		return Failure(ErrUpgradeDisabled)
	}

	body, err := json.Marshal(upgradeRequestBody{
		PlanCode:  req.PlanCode,
		UseCredit: req.UseCredit,
	})
	if err != nil {
		return Failure(ErrNetwork)
	}

	last := Failure(ErrNetwork)
	for _, base := range s.bases {
		result, fatal := s.attempt(ctx, base, req, body)
		if result.OK {
			return result
		}
		last = result
		if fatal {
			break
		}
	}
	return last
}

// attempt performs one endpoint call. The second return is true when further
// endpoints must not be tried (open circuit breaker).
func (s *RemoteStrategy) attempt(ctx context.Context, base string, req Request, body []byte) (Result, bool) {
	url := fmt.Sprintf("%s/api/listings/%d/upgrade", base, req.ListingID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Failure(ErrNetwork), false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.BearerToken)

	resp, err := s.breaker.Execute(func() (*http.Response, error) {
		r, doErr := s.httpClient.Do(httpReq)
		if doErr != nil {
			return nil, doErr
		}
		// 5xx counts as a breaker failure; 4xx is an answered request.
		if r.StatusCode >= 500 {
			return r, fmt.Errorf("upgrade endpoint returned %d", r.StatusCode)
		}
		return r, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		fiberlog.Warnf("upgrade endpoint %s skipped: circuit breaker open", base)
		return Failure(ErrNetwork), true
	}
	if err != nil {
		if resp != nil {
			defer resp.Body.Close()
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
			return Failure(FailedStatusError(resp.StatusCode)), false
		}
		fiberlog.Warnf("upgrade request to %s failed: %v", base, err)
		return Failure(ErrNetwork), false
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Failure(FailedStatusError(resp.StatusCode)), false
	}

	var out Result
	if err := json.Unmarshal(payload, &out); err != nil {
		fiberlog.Warnf("upgrade response from %s not decodable: %v", base, err)
		return Failure(ErrNetwork), false
	}
	if !out.OK {
		if out.Err == "" {
			out.Err = FailedStatusError(resp.StatusCode)
		}
		return out, false
	}
	return out, false
}
