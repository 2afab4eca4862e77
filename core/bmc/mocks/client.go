package mocks

import (
	"context"

	"beryll-inventory/core/bmc"

	"github.com/stretchr/testify/mock"
)

// Client is a testify mock of bmc.Client.
type Client struct {
	mock.Mock
}

func (m *Client) Driver() string {
	args := m.Called()
	return args.String(0)
}

func (m *Client) Inventory(ctx context.Context, t bmc.Target) ([]bmc.Component, error) {
	args := m.Called(ctx, t)
	if comps, ok := args.Get(0).([]bmc.Component); ok {
		return comps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) Check(ctx context.Context, t bmc.Target) (*bmc.CheckResult, error) {
	args := m.Called(ctx, t)
	if res, ok := args.Get(0).(*bmc.CheckResult); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
