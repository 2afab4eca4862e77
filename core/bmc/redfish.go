package bmc

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

var (
	errNotFound     = errors.New("resource not found")
	errUnauthorized = errors.New("unauthorized")
)

var systemPaths = []string{"/redfish/v1/Systems/system", "/redfish/v1/Systems/1"}

// RedfishClient walks the Redfish tree of a BMC over HTTPS with basic auth.
type RedfishClient struct {
	cfg    Config
	http   *retryablehttp.Client
	logger *zap.Logger
}

// NewRedfishClient builds a client whose requests are retried on transport
// errors and 5xx responses. 4xx responses are returned as is.
func NewRedfishClient(cfg Config, logger *zap.Logger) *RedfishClient {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.Retries
	client.RetryWaitMin = cfg.RetryWait()
	client.RetryWaitMax = cfg.RetryWait()
	client.Logger = leveledLogger{logger.Sugar()}
	client.HTTPClient = &http.Client{
		Timeout: cfg.Timeout(),
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			// nolint:gosec // BMCs ship self-signed certificates.
			TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 10 * time.Second,
			MaxIdleConnsPerHost: 4,
		},
	}

	return &RedfishClient{cfg: cfg, http: client, logger: logger}
}

// Driver implements Client.
func (c *RedfishClient) Driver() string { return DriverRedfish }

// Check implements Client by reading the service root.
func (c *RedfishClient) Check(ctx context.Context, t Target) (*CheckResult, error) {
	if t.Address == "" {
		return nil, ErrNoAddress
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.CheckTimeout())
	defer cancel()

	var root struct {
		RedfishVersion string
		Name           string
		UUID           string
	}
	if err := c.get(ctx, t, "/redfish/v1/", &root); err != nil {
		return &CheckResult{Driver: DriverRedfish, Error: err.Error()}, nil
	}

	return &CheckResult{
		Reachable:      true,
		Driver:         DriverRedfish,
		RedfishVersion: root.RedfishVersion,
		Name:           root.Name,
		UUID:           root.UUID,
	}, nil
}

// Inventory implements Client. Any failing section or member fails the whole fetch.
func (c *RedfishClient) Inventory(ctx context.Context, t Target) ([]Component, error) {
	if t.Address == "" {
		return nil, ErrNoAddress
	}

	if err := c.get(ctx, t, "/redfish/v1/", nil); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, t.Address, err)
	}

	sections := []struct {
		name string
		load func(context.Context, Target) ([]Component, error)
	}{
		{"processors", c.processors},
		{"memory", c.memory},
		{"storage", c.storage},
		{"network", c.network},
		{"chassis", c.mainboard},
		{"manager", c.manager},
	}

	var (
		out  []Component
		merr *multierror.Error
	)
	for _, s := range sections {
		comps, err := s.load(ctx, t)
		if err != nil {
			merr = multierror.Append(merr, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		c.logger.Debug("Redfish section loaded",
			zap.Uint("server_id", t.ServerID),
			zap.String("section", s.name),
			zap.Int("count", len(comps)))
		out = append(out, comps...)
	}

	if err := merr.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, t.Address, err)
	}
	return out, nil
}

// get fetches path and decodes it into out (if non-nil).
func (c *RedfishClient) get(ctx context.Context, t Target, path string, out any) error {
	protocol := c.cfg.Protocol
	if protocol == "" {
		protocol = "https"
	}
	url := fmt.Sprintf("%s://%s%s", protocol, strings.TrimSuffix(t.Address, "/"), path)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", path, errNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("GET %s: %w", path, errUnauthorized)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("GET %s: unexpected status %s", path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}

// members returns the member links of the first collection path that exists.
// A section absent on every path yields no members.
func (c *RedfishClient) members(ctx context.Context, t Target, paths ...string) ([]string, error) {
	for _, p := range paths {
		var col collection
		err := c.get(ctx, t, p, &col)
		if errors.Is(err, errNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if col.Members == nil {
			continue
		}
		links := make([]string, 0, len(col.Members))
		for _, m := range col.Members {
			links = append(links, m.ID)
		}
		return links, nil
	}
	return nil, nil
}

// fetchAll loads every link into a T, aggregating member failures.
func fetchAll[T any](ctx context.Context, c *RedfishClient, t Target, links []string) ([]T, error) {
	var (
		out  = make([]T, 0, len(links))
		merr *multierror.Error
	)
	for _, link := range links {
		var item T
		if err := c.get(ctx, t, link, &item); err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		out = append(out, item)
	}
	return out, merr.ErrorOrNil()
}

// first loads the first resource found on paths, following a collection to its
// first member.
func first[T any](ctx context.Context, c *RedfishClient, t Target, paths ...string) (*T, error) {
	for _, p := range paths {
		var raw json.RawMessage
		err := c.get(ctx, t, p, &raw)
		if errors.Is(err, errNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var col collection
		if json.Unmarshal(raw, &col) == nil && len(col.Members) > 0 {
			raw = nil
			if err := c.get(ctx, t, col.Members[0].ID, &raw); err != nil {
				return nil, err
			}
		}

		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("GET %s: decode: %w", p, err)
		}
		return &item, nil
	}
	return nil, nil
}

func systemSubpaths(sub string) []string {
	out := make([]string, 0, len(systemPaths))
	for _, p := range systemPaths {
		out = append(out, p+"/"+sub)
	}
	return out
}

// leveledLogger adapts zap to retryablehttp.LeveledLogger.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.s.Errorw(msg, kv...) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.s.Debugw(msg, kv...) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.s.Warnw(msg, kv...) }
