package bmc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	DriverRedfish = "redfish"
	DriverBmclib  = "bmclib"
)

// Component type and status values reported by the drivers.
const (
	TypeCPU         = "CPU"
	TypeRAM         = "RAM"
	TypeHDD         = "HDD"
	TypeSSD         = "SSD"
	TypeNVME        = "NVME"
	TypeNIC         = "NIC"
	TypeMotherboard = "MOTHERBOARD"
	TypePSU         = "PSU"
	TypeGPU         = "GPU"
	TypeRAID        = "RAID"
	TypeBMC         = "BMC"

	StatusOK       = "OK"
	StatusWarning  = "WARNING"
	StatusCritical = "CRITICAL"
	StatusUnknown  = "UNKNOWN"
)

var (
	// ErrUnavailable wraps every failure to obtain a complete live inventory.
	ErrUnavailable = errors.New("bmc unavailable")
	// ErrNoAddress is returned when the server has no BMC address configured.
	ErrNoAddress = fmt.Errorf("%w: no BMC address configured", ErrUnavailable)
)

// Config holds credentials and transport settings for BMC queries.
type Config struct {
	// Driver selects the implementation (redfish, bmclib).
	Driver string `mapstructure:"driver" default:"redfish"`
	// Username for BMC basic auth / session login.
	Username string `mapstructure:"username" default:"admin"`
	// Password for BMC basic auth / session login.
	Password string `mapstructure:"password" default:""`
	// Protocol is the URL scheme used to reach the BMC.
	Protocol string `mapstructure:"protocol" default:"https"`
	// TimeoutSeconds bounds one full inventory fetch.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// CheckTimeoutSeconds bounds a connectivity probe.
	CheckTimeoutSeconds int `mapstructure:"check_timeout_seconds" default:"15"`
	// Retries is the number of retries per request after the first attempt.
	Retries int `mapstructure:"retries" default:"2"`
	// RetryWaitMs is the pause between attempts.
	RetryWaitMs int `mapstructure:"retry_wait_ms" default:"2000"`
	// InsecureSkipVerify accepts self-signed BMC certificates.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" default:"true"`
}

// Timeout returns the fetch timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CheckTimeout returns the connectivity probe timeout.
func (c Config) CheckTimeout() time.Duration {
	if c.CheckTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.CheckTimeoutSeconds) * time.Second
}

// RetryWait returns the pause between attempts.
func (c Config) RetryWait() time.Duration {
	if c.RetryWaitMs < 0 {
		return 0
	}
	return time.Duration(c.RetryWaitMs) * time.Millisecond
}

// Target identifies the BMC to query.
type Target struct {
	ServerID uint
	Address  string
}

// Component is one hardware part as reported live by a BMC. It is never persisted.
// Capacity is in bytes, Speed in MHz (CPU, RAM) or Mbps (NIC).
type Component struct {
	Type              string         `json:"componentType"`
	Name              string         `json:"name"`
	Slot              string         `json:"slot,omitempty"`
	Manufacturer      string         `json:"manufacturer,omitempty"`
	Model             string         `json:"model,omitempty"`
	SerialNumber      string         `json:"serialNumber,omitempty"`
	SerialNumberYadro string         `json:"serialNumberYadro,omitempty"`
	PartNumber        string         `json:"partNumber,omitempty"`
	FirmwareVersion   string         `json:"firmwareVersion,omitempty"`
	Capacity          int64          `json:"capacity,omitempty"`
	Speed             int64          `json:"speed,omitempty"`
	Status            string         `json:"status"`
	Health            string         `json:"health,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

// CheckResult is the outcome of a connectivity probe.
type CheckResult struct {
	Reachable      bool   `json:"success"`
	Driver         string `json:"driver"`
	RedfishVersion string `json:"redfishVersion,omitempty"`
	Name           string `json:"name,omitempty"`
	UUID           string `json:"uuid,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Client fetches live inventories from BMCs.
type Client interface {
	// Driver names the implementation, used as a metrics label.
	Driver() string
	// Inventory returns the complete component list or an error wrapping ErrUnavailable.
	Inventory(ctx context.Context, t Target) ([]Component, error)
	// Check probes connectivity. Unreachable BMCs are reported in the result, not as an error.
	Check(ctx context.Context, t Target) (*CheckResult, error)
}

// New returns the client selected by cfg.Driver.
func New(cfg Config, logger *zap.Logger) (Client, error) {
	switch cfg.Driver {
	case DriverRedfish, "":
		return NewRedfishClient(cfg, logger), nil
	case DriverBmclib:
		return NewBmclibClient(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown bmc driver: %s", cfg.Driver)
	}
}

// MapStatus folds Redfish State/Health into a component status.
func MapStatus(state, health string) string {
	switch {
	case state == "" && health == "":
		return StatusUnknown
	case health == "Critical" || state == "Disabled" || state == "UnavailableOffline":
		return StatusCritical
	case health == "Warning" || state == "Degraded":
		return StatusWarning
	case health == "OK" || state == "Enabled" || state == "StandbyOffline":
		return StatusOK
	default:
		return StatusUnknown
	}
}
