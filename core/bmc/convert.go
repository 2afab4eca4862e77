package bmc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bmc-toolbox/common"
)

// ErrDeviceNil is returned when a driver hands back no device.
var ErrDeviceNil = errors.New("device object is nil")

// DeviceConverter flattens a bmc-toolbox/common Device into Components.
// It is stateless and safe for concurrent use.
type DeviceConverter struct{}

// NewDeviceConverter returns a DeviceConverter.
func NewDeviceConverter() *DeviceConverter { return &DeviceConverter{} }

// deviceConversion carries the per-device state of one Components call.
type deviceConversion struct {
	deviceVendor string
}

// Components converts device. Parts without a slot get their index as slot;
// serials are never invented.
func (*DeviceConverter) Components(device *common.Device) ([]Component, error) {
	if device == nil {
		return nil, ErrDeviceNil
	}

	dc := &deviceConversion{deviceVendor: common.FormatVendorName(device.Vendor)}

	var out []Component
	out = append(out, dc.cpus(device.CPUs)...)
	out = append(out, dc.dimms(device.Memory)...)
	out = append(out, dc.storageControllers(device.StorageControllers)...)
	out = append(out, dc.drives(device.Drives)...)
	out = append(out, dc.nics(device.NICs)...)
	out = append(out, dc.psus(device.PSUs)...)
	out = append(out, dc.gpus(device.GPUs)...)

	if device.Mainboard != nil {
		if mb := dc.single(TypeMotherboard, "Main", &device.Mainboard.Common); mb != nil {
			out = append(out, *mb)
		}
	}
	if device.BMC != nil {
		if b := dc.single(TypeBMC, "BMC", &device.BMC.Common); b != nil {
			out = append(out, *b)
		}
	}

	return out, nil
}

func (dc *deviceConversion) base(kind, slot string, idx int, c *common.Common) Component {
	vendor := c.Vendor
	if vendor == "" {
		vendor = dc.deviceVendor
	}

	comp := Component{
		Type:         kind,
		Slot:         strings.TrimSpace(slot),
		Manufacturer: common.FormatVendorName(vendor),
		Model:        common.FormatProductName(c.Model),
		SerialNumber: strings.TrimSpace(c.Serial),
		Status:       StatusUnknown,
	}
	if comp.Slot == "" {
		comp.Slot = strconv.Itoa(idx)
	}
	if c.Firmware != nil {
		comp.FirmwareVersion = strings.TrimSpace(c.Firmware.Installed)
	}
	if c.Status != nil {
		comp.Status = MapStatus(c.Status.State, c.Status.Health)
		comp.Health = c.Status.Health
	}

	comp.Name = firstNonBlank(c.ProductName, comp.Model, c.Description, kind+" "+comp.Slot)
	return comp
}

func (dc *deviceConversion) single(kind, slot string, c *common.Common) *Component {
	if c.Vendor == "" && c.Model == "" && c.Serial == "" {
		return nil
	}
	comp := dc.base(kind, slot, 0, c)
	return &comp
}

func (dc *deviceConversion) cpus(cpus []*common.CPU) []Component {
	out := make([]Component, 0, len(cpus))
	for idx, c := range cpus {
		if c == nil {
			continue
		}
		comp := dc.base(TypeCPU, firstNonBlank(c.Slot, c.ID), idx, &c.Common)
		comp.Speed = toMHz(int64(c.ClockSpeedHz))
		comp.Metadata = compact(map[string]any{
			"cores":   int64(c.Cores),
			"threads": int64(c.Threads),
		})
		out = append(out, comp)
	}
	return out
}

func (dc *deviceConversion) dimms(dimms []*common.Memory) []Component {
	out := make([]Component, 0, len(dimms))
	for idx, c := range dimms {
		if c == nil {
			continue
		}
		// skip empty dimm slots
		if c.Vendor == "" && c.ProductName == "" && c.SizeBytes == 0 && c.ClockSpeedHz == 0 {
			continue
		}

		slot := strings.TrimPrefix(firstNonBlank(c.Slot, c.ID), "DIMM.Socket.")
		comp := dc.base(TypeRAM, slot, idx, &c.Common)
		comp.PartNumber = strings.TrimSpace(c.PartNumber)
		comp.Capacity = int64(c.SizeBytes)
		comp.Speed = toMHz(int64(c.ClockSpeedHz))
		if c.ProductName == "" && c.Model == "" {
			comp.Name = strings.TrimSpace(fmt.Sprintf("%s %dGB %s", firstNonBlank(comp.Manufacturer, "RAM"), comp.Capacity/bytesPerGiB, c.Type))
		}
		comp.Metadata = compact(map[string]any{"memoryType": c.Type})
		out = append(out, comp)
	}
	return out
}

func (dc *deviceConversion) storageControllers(ctrls []*common.StorageController) []Component {
	out := make([]Component, 0, len(ctrls))
	for idx, c := range ctrls {
		if c == nil {
			continue
		}
		out = append(out, dc.base(TypeRAID, c.ID, idx, &c.Common))
	}
	return out
}

func (dc *deviceConversion) drives(drives []*common.Drive) []Component {
	out := make([]Component, 0, len(drives))
	for idx, c := range drives {
		if c == nil {
			continue
		}
		comp := dc.base(DetectDriveType(c.Type, c.Protocol), c.ID, idx, &c.Common)
		comp.Capacity = int64(c.CapacityBytes)
		comp.Metadata = compact(map[string]any{
			"mediaType": c.Type,
			"interface": c.Protocol,
		})
		out = append(out, comp)
	}
	return out
}

func (dc *deviceConversion) nics(nics []*common.NIC) []Component {
	out := make([]Component, 0, len(nics))
	for idx, c := range nics {
		if c == nil {
			continue
		}
		out = append(out, dc.base(TypeNIC, c.ID, idx, &c.Common))
	}
	return out
}

func (dc *deviceConversion) psus(psus []*common.PSU) []Component {
	out := make([]Component, 0, len(psus))
	for idx, c := range psus {
		if c == nil {
			continue
		}
		comp := dc.base(TypePSU, c.ID, idx, &c.Common)
		comp.Metadata = compact(map[string]any{"powerCapacityWatts": int64(c.PowerCapacityWatts)})
		out = append(out, comp)
	}
	return out
}

func (dc *deviceConversion) gpus(gpus []*common.GPU) []Component {
	out := make([]Component, 0, len(gpus))
	for idx, c := range gpus {
		if c == nil {
			continue
		}
		out = append(out, dc.base(TypeGPU, "", idx, &c.Common))
	}
	return out
}

// toMHz accepts either Hz or MHz; providers disagree on the unit.
func toMHz(v int64) int64 {
	if v >= 1_000_000 {
		return v / 1_000_000
	}
	return v
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
