package bmc

import (
	"context"
	"fmt"
	"strings"

	"beryll-inventory/core/utils"
)

type odataRef struct {
	ID string `json:"@odata.id"`
}

type collection struct {
	Members []odataRef `json:"Members"`
}

type rfStatus struct {
	State  string `json:"State"`
	Health string `json:"Health"`
}

// Numeric fields are decoded as any: vendors disagree on number vs string vs null.

type rfProcessor struct {
	ID                    string   `json:"Id"`
	Socket                string   `json:"Socket"`
	Manufacturer          string   `json:"Manufacturer"`
	Model                 string   `json:"Model"`
	SerialNumber          string   `json:"SerialNumber"`
	PartNumber            string   `json:"PartNumber"`
	InstructionSet        string   `json:"InstructionSet"`
	ProcessorArchitecture string   `json:"ProcessorArchitecture"`
	TotalCores            any      `json:"TotalCores"`
	TotalThreads          any      `json:"TotalThreads"`
	MaxSpeedMHz           any      `json:"MaxSpeedMHz"`
	OperatingSpeedMHz     any      `json:"OperatingSpeedMHz"`
	Status                rfStatus `json:"Status"`
}

type rfMemory struct {
	ID                string   `json:"Id"`
	DeviceLocator     string   `json:"DeviceLocator"`
	Manufacturer      string   `json:"Manufacturer"`
	PartNumber        string   `json:"PartNumber"`
	SerialNumber      string   `json:"SerialNumber"`
	MemoryDeviceType  string   `json:"MemoryDeviceType"`
	MemoryType        string   `json:"MemoryType"`
	CapacityMiB       any      `json:"CapacityMiB"`
	SizeMB            any      `json:"SizeMB"`
	OperatingSpeedMhz any      `json:"OperatingSpeedMhz"`
	RankCount         any      `json:"RankCount"`
	Status            rfStatus `json:"Status"`
}

type rfStorage struct {
	ID                 string                `json:"Id"`
	StorageControllers []rfStorageController `json:"StorageControllers"`
	Drives             []odataRef            `json:"Drives"`
}

type rfStorageController struct {
	MemberID        string   `json:"MemberId"`
	Name            string   `json:"Name"`
	Manufacturer    string   `json:"Manufacturer"`
	Model           string   `json:"Model"`
	SerialNumber    string   `json:"SerialNumber"`
	PartNumber      string   `json:"PartNumber"`
	FirmwareVersion string   `json:"FirmwareVersion"`
	Status          rfStatus `json:"Status"`
}

type rfDrive struct {
	ID               string   `json:"Id"`
	Manufacturer     string   `json:"Manufacturer"`
	Model            string   `json:"Model"`
	SerialNumber     string   `json:"SerialNumber"`
	PartNumber       string   `json:"PartNumber"`
	MediaType        string   `json:"MediaType"`
	Protocol         string   `json:"Protocol"`
	Revision         string   `json:"Revision"`
	FirmwareVersion  string   `json:"FirmwareVersion"`
	CapacityBytes    any      `json:"CapacityBytes"`
	Status           rfStatus `json:"Status"`
	PhysicalLocation struct {
		PartLocation struct {
			ServiceLabel string `json:"ServiceLabel"`
		} `json:"PartLocation"`
	} `json:"PhysicalLocation"`
}

type rfEthernet struct {
	ID                     string   `json:"Id"`
	Name                   string   `json:"Name"`
	Description            string   `json:"Description"`
	Manufacturer           string   `json:"Manufacturer"`
	Model                  string   `json:"Model"`
	SerialNumber           string   `json:"SerialNumber"`
	PartNumber             string   `json:"PartNumber"`
	MACAddress             string   `json:"MACAddress"`
	PermanentMACAddress    string   `json:"PermanentMACAddress"`
	FirmwarePackageVersion string   `json:"FirmwarePackageVersion"`
	SpeedMbps              any      `json:"SpeedMbps"`
	Status                 rfStatus `json:"Status"`
}

type rfChassis struct {
	ID           string   `json:"Id"`
	Manufacturer string   `json:"Manufacturer"`
	Model        string   `json:"Model"`
	SerialNumber string   `json:"SerialNumber"`
	PartNumber   string   `json:"PartNumber"`
	SKU          string   `json:"SKU"`
	Status       rfStatus `json:"Status"`
}

type rfManager struct {
	ID              string   `json:"Id"`
	Manufacturer    string   `json:"Manufacturer"`
	Model           string   `json:"Model"`
	SerialNumber    string   `json:"SerialNumber"`
	FirmwareVersion string   `json:"FirmwareVersion"`
	Status          rfStatus `json:"Status"`
}

const bytesPerGiB = 1024 * 1024 * 1024

func (c *RedfishClient) processors(ctx context.Context, t Target) ([]Component, error) {
	links, err := c.members(ctx, t, systemSubpaths("Processors")...)
	if err != nil {
		return nil, err
	}
	cpus, err := fetchAll[rfProcessor](ctx, c, t, links)
	if err != nil {
		return nil, err
	}

	out := make([]Component, 0, len(cpus))
	for _, cpu := range cpus {
		speed := utils.ToInt64(cpu.MaxSpeedMHz)
		if speed == 0 {
			speed = utils.ToInt64(cpu.OperatingSpeedMHz)
		}
		out = append(out, Component{
			Type:         TypeCPU,
			Name:         utils.FirstNonEmpty(cpu.Model, strings.TrimSpace(utils.FirstNonEmpty(cpu.Manufacturer, "CPU")+" "+utils.FirstNonEmpty(cpu.Socket, cpu.ID))),
			Slot:         utils.FirstNonEmpty(cpu.Socket, cpu.ID),
			Manufacturer: cpu.Manufacturer,
			Model:        cpu.Model,
			SerialNumber: cpu.SerialNumber,
			PartNumber:   cpu.PartNumber,
			Speed:        speed,
			Status:       MapStatus(cpu.Status.State, cpu.Status.Health),
			Health:       cpu.Status.Health,
			Metadata: compact(map[string]any{
				"cores":        utils.ToInt64(cpu.TotalCores),
				"threads":      utils.ToInt64(cpu.TotalThreads),
				"architecture": utils.FirstNonEmpty(cpu.InstructionSet, cpu.ProcessorArchitecture),
			}),
		})
	}
	return out, nil
}

func (c *RedfishClient) memory(ctx context.Context, t Target) ([]Component, error) {
	links, err := c.members(ctx, t, systemSubpaths("Memory")...)
	if err != nil {
		return nil, err
	}
	dimms, err := fetchAll[rfMemory](ctx, c, t, links)
	if err != nil {
		return nil, err
	}

	out := make([]Component, 0, len(dimms))
	for _, m := range dimms {
		mib := utils.ToInt64(m.CapacityMiB)
		if mib == 0 {
			mib = utils.ToInt64(m.SizeMB)
		}
		// empty DIMM slot
		if mib == 0 {
			continue
		}
		memType := utils.FirstNonEmpty(m.MemoryDeviceType, m.MemoryType)
		gib := (mib + 512) / 1024

		out = append(out, Component{
			Type:         TypeRAM,
			Name:         strings.TrimSpace(fmt.Sprintf("%s %dGB %s", utils.FirstNonEmpty(m.Manufacturer, "RAM"), gib, memType)),
			Slot:         utils.FirstNonEmpty(m.DeviceLocator, m.ID),
			Manufacturer: m.Manufacturer,
			Model:        m.PartNumber,
			SerialNumber: m.SerialNumber,
			PartNumber:   m.PartNumber,
			Capacity:     mib * 1024 * 1024,
			Speed:        utils.ToInt64(m.OperatingSpeedMhz),
			Status:       MapStatus(m.Status.State, m.Status.Health),
			Health:       m.Status.Health,
			Metadata: compact(map[string]any{
				"memoryType": memType,
				"rank":       utils.ToInt64(m.RankCount),
			}),
		})
	}
	return out, nil
}

func (c *RedfishClient) storage(ctx context.Context, t Target) ([]Component, error) {
	links, err := c.members(ctx, t, systemSubpaths("Storage")...)
	if err != nil {
		return nil, err
	}
	subsystems, err := fetchAll[rfStorage](ctx, c, t, links)
	if err != nil {
		return nil, err
	}

	var out []Component
	for _, s := range subsystems {
		for _, ctrl := range s.StorageControllers {
			out = append(out, Component{
				Type:            TypeRAID,
				Name:            utils.FirstNonEmpty(ctrl.Model, ctrl.Name, "Storage Controller"),
				Slot:            utils.FirstNonEmpty(ctrl.MemberID, s.ID),
				Manufacturer:    ctrl.Manufacturer,
				Model:           ctrl.Model,
				SerialNumber:    ctrl.SerialNumber,
				PartNumber:      ctrl.PartNumber,
				FirmwareVersion: ctrl.FirmwareVersion,
				Status:          MapStatus(ctrl.Status.State, ctrl.Status.Health),
				Health:          ctrl.Status.Health,
			})
		}

		driveLinks := make([]string, 0, len(s.Drives))
		for _, d := range s.Drives {
			driveLinks = append(driveLinks, d.ID)
		}
		drives, err := fetchAll[rfDrive](ctx, c, t, driveLinks)
		if err != nil {
			return nil, err
		}

		for _, d := range drives {
			kind := DetectDriveType(d.MediaType, d.Protocol)
			capacity := utils.ToInt64(d.CapacityBytes)
			out = append(out, Component{
				Type:            kind,
				Name:            fmt.Sprintf("%s %dGB", utils.FirstNonEmpty(d.Model, kind), capacity/bytesPerGiB),
				Slot:            utils.FirstNonEmpty(d.PhysicalLocation.PartLocation.ServiceLabel, d.ID),
				Manufacturer:    d.Manufacturer,
				Model:           d.Model,
				SerialNumber:    d.SerialNumber,
				PartNumber:      d.PartNumber,
				FirmwareVersion: utils.FirstNonEmpty(d.Revision, d.FirmwareVersion),
				Capacity:        capacity,
				Status:          MapStatus(d.Status.State, d.Status.Health),
				Health:          d.Status.Health,
				Metadata: compact(map[string]any{
					"mediaType": d.MediaType,
					"interface": d.Protocol,
				}),
			})
		}
	}
	return out, nil
}

func (c *RedfishClient) network(ctx context.Context, t Target) ([]Component, error) {
	paths := append(systemSubpaths("EthernetInterfaces"),
		"/redfish/v1/Chassis/chassis/NetworkAdapters",
		"/redfish/v1/Chassis/1/NetworkAdapters",
	)
	links, err := c.members(ctx, t, paths...)
	if err != nil {
		return nil, err
	}
	nics, err := fetchAll[rfEthernet](ctx, c, t, links)
	if err != nil {
		return nil, err
	}

	out := make([]Component, 0, len(nics))
	for _, n := range nics {
		out = append(out, Component{
			Type:            TypeNIC,
			Name:            utils.FirstNonEmpty(n.Name, n.Description, "NIC "+n.ID),
			Slot:            n.ID,
			Manufacturer:    n.Manufacturer,
			Model:           n.Model,
			SerialNumber:    n.SerialNumber,
			PartNumber:      n.PartNumber,
			FirmwareVersion: n.FirmwarePackageVersion,
			Speed:           utils.ToInt64(n.SpeedMbps),
			Status:          MapStatus(n.Status.State, n.Status.Health),
			Health:          n.Status.Health,
			Metadata: compact(map[string]any{
				"macAddress": utils.FirstNonEmpty(n.MACAddress, n.PermanentMACAddress),
			}),
		})
	}
	return out, nil
}

func (c *RedfishClient) mainboard(ctx context.Context, t Target) ([]Component, error) {
	ch, err := first[rfChassis](ctx, c, t, "/redfish/v1/Chassis/chassis", "/redfish/v1/Chassis/1", "/redfish/v1/Chassis")
	if err != nil {
		return nil, err
	}
	if ch == nil || (ch.Manufacturer == "" && ch.Model == "") {
		return nil, nil
	}

	return []Component{{
		Type:         TypeMotherboard,
		Name:         utils.FirstNonEmpty(ch.Model, strings.TrimSpace(ch.Manufacturer+" Motherboard")),
		Slot:         "Main",
		Manufacturer: ch.Manufacturer,
		Model:        ch.Model,
		SerialNumber: ch.SerialNumber,
		PartNumber:   utils.FirstNonEmpty(ch.PartNumber, ch.SKU),
		Status:       MapStatus(ch.Status.State, ch.Status.Health),
		Health:       ch.Status.Health,
	}}, nil
}

func (c *RedfishClient) manager(ctx context.Context, t Target) ([]Component, error) {
	m, err := first[rfManager](ctx, c, t, "/redfish/v1/Managers/bmc", "/redfish/v1/Managers/1", "/redfish/v1/Managers")
	if err != nil {
		return nil, err
	}
	if m == nil || (m.FirmwareVersion == "" && m.Model == "") {
		return nil, nil
	}

	return []Component{{
		Type:            TypeBMC,
		Name:            utils.FirstNonEmpty(m.Model, "BMC Controller"),
		Slot:            "BMC",
		Manufacturer:    m.Manufacturer,
		Model:           m.Model,
		SerialNumber:    m.SerialNumber,
		FirmwareVersion: m.FirmwareVersion,
		Status:          MapStatus(m.Status.State, m.Status.Health),
		Health:          m.Status.Health,
	}}, nil
}

// DetectDriveType classifies a drive from its Redfish media type and protocol.
func DetectDriveType(mediaType, protocol string) string {
	media := strings.ToUpper(mediaType)
	proto := strings.ToUpper(protocol)

	switch {
	case strings.Contains(proto, "NVME") || strings.Contains(proto, "PCIE") || strings.Contains(media, "NVME"):
		return TypeNVME
	case strings.Contains(media, "SSD") || media == "SOLIDSTATEDRIVE":
		return TypeSSD
	case strings.Contains(media, "HDD") || media == "ROTATIONAL":
		return TypeHDD
	default:
		return TypeSSD
	}
}

// compact drops zero values so metadata only carries what the BMC reported.
func compact(m map[string]any) map[string]any {
	for k, v := range m {
		switch x := v.(type) {
		case string:
			if x == "" {
				delete(m, k)
			}
		case int64:
			if x == 0 {
				delete(m, k)
			}
		case nil:
			delete(m, k)
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}
