package bmc

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"beryll-inventory/core/logger"

	bmclibv2 "github.com/bmc-toolbox/bmclib/v2"
	"github.com/bmc-toolbox/common"
	"github.com/jacobweinstock/registrar"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// logoutTimeout bounds the session close, which runs on a fresh context.
const logoutTimeout = time.Minute

var (
	errBMCLogin             = errors.New("bmc login error")
	errBMCLoginUnauthorized = errors.New("bmc login unauthorized")
	errBMCInventory         = errors.New("bmc inventory error")
)

// Session is a logged-in connection to one BMC.
type Session interface {
	Open(ctx context.Context) error
	// Close takes its own context so logout still runs when the caller's is done.
	Close(ctx context.Context) error
	Inventory(ctx context.Context) (*common.Device, error)
}

// SessionFactory opens sessions for a target.
type SessionFactory func(t Target) Session

// BmclibClient fetches inventories through bmclib, trying the redfish and
// vendor API providers.
type BmclibClient struct {
	cfg        Config
	logger     *zap.Logger
	newSession SessionFactory
	converter  *DeviceConverter
}

// NewBmclibClient returns a client that opens real bmclib sessions.
func NewBmclibClient(cfg Config, logger *zap.Logger) *BmclibClient {
	c := &BmclibClient{
		cfg:       cfg,
		logger:    logger,
		converter: NewDeviceConverter(),
	}
	c.newSession = c.bmclibSession
	return c
}

// WithSessionFactory swaps the session constructor, used by tests.
func (c *BmclibClient) WithSessionFactory(f SessionFactory) *BmclibClient {
	c.newSession = f
	return c
}

// Driver implements Client.
func (c *BmclibClient) Driver() string { return DriverBmclib }

// Inventory implements Client.
func (c *BmclibClient) Inventory(ctx context.Context, t Target) ([]Component, error) {
	if t.Address == "" {
		return nil, ErrNoAddress
	}

	device, err := c.withSession(ctx, t, c.cfg.Timeout(), func(ctx context.Context, s Session) (*common.Device, error) {
		device, err := s.Inventory(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", errBMCInventory, err.Error())
		}
		return device, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, t.Address, err)
	}

	components, err := c.converter.Components(device)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnavailable, t.Address, err)
	}
	return components, nil
}

// Check implements Client by logging in and out again.
func (c *BmclibClient) Check(ctx context.Context, t Target) (*CheckResult, error) {
	if t.Address == "" {
		return nil, ErrNoAddress
	}

	_, err := c.withSession(ctx, t, c.cfg.CheckTimeout(), func(context.Context, Session) (*common.Device, error) {
		return nil, nil
	})
	if err != nil {
		return &CheckResult{Driver: DriverBmclib, Error: err.Error()}, nil
	}
	return &CheckResult{Reachable: true, Driver: DriverBmclib}, nil
}

func (c *BmclibClient) withSession(
	ctx context.Context,
	t Target,
	timeout time.Duration,
	fn func(context.Context, Session) (*common.Device, error),
) (*common.Device, error) {
	if t.Address == "" {
		return nil, ErrNoAddress
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s := c.newSession(t)
	if err := s.Open(ctx); err != nil {
		if strings.Contains(err.Error(), "401") || strings.Contains(err.Error(), "FailedState to login") {
			return nil, fmt.Errorf("%w: %s", errBMCLoginUnauthorized, err.Error())
		}
		return nil, fmt.Errorf("%w: %s", errBMCLogin, err.Error())
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), logoutTimeout)
		defer closeCancel()
		if err := s.Close(closeCtx); err != nil {
			c.logger.Warn("BMC logout failed", zap.Uint("server_id", t.ServerID), zap.Error(err))
		}
	}()

	return fn(ctx, s)
}

func (c *BmclibClient) bmclibSession(t Target) Session {
	client := bmclibv2.NewClient(
		t.Address,
		c.cfg.Username,
		c.cfg.Password,
		bmclibv2.WithLogger(logger.Logr(c.logger, "bmclib")),
		bmclibv2.WithHTTPClient(newHTTPClient(c.cfg)),
		bmclibv2.WithPerProviderTimeout(c.cfg.CheckTimeout()),
	)

	// HTTPS providers only; ipmitool and friends are left out.
	drivers := append(registrar.Drivers{}, client.Registry.Using("redfish")...)
	drivers = append(drivers, client.Registry.Using("vendorapi")...)
	client.Registry.Drivers = drivers

	return client
}

func newHTTPClient(cfg Config) *http.Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		panic(err)
	}

	return &http.Client{
		Timeout: cfg.Timeout(),
		Jar:     jar,
		Transport: &http.Transport{
			// nolint:gosec // BMCs ship self-signed certificates.
			TLSClientConfig:   &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify},
			DisableKeepAlives: true,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   30 * time.Second,
			ResponseHeaderTimeout: cfg.Timeout(),
		},
	}
}
