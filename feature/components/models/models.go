package models

import (
	"strings"
	"time"
)

// ComponentType classifies a hardware part.
type ComponentType string

const (
	TypeCPU         ComponentType = "CPU"
	TypeRAM         ComponentType = "RAM"
	TypeHDD         ComponentType = "HDD"
	TypeSSD         ComponentType = "SSD"
	TypeNVME        ComponentType = "NVME"
	TypeNIC         ComponentType = "NIC"
	TypeMotherboard ComponentType = "MOTHERBOARD"
	TypePSU         ComponentType = "PSU"
	TypeGPU         ComponentType = "GPU"
	TypeRAID        ComponentType = "RAID"
	TypeBMC         ComponentType = "BMC"
	TypeFan         ComponentType = "FAN"
	TypeChassis     ComponentType = "CHASSIS"
	TypeBackplane   ComponentType = "BACKPLANE"
	TypeCable       ComponentType = "CABLE"
	TypeOther       ComponentType = "OTHER"
)

// ComponentTypes lists every valid component type in display order.
var ComponentTypes = []ComponentType{
	TypeCPU, TypeRAM, TypeHDD, TypeSSD, TypeNVME, TypeNIC, TypeMotherboard, TypePSU,
	TypeGPU, TypeRAID, TypeBMC, TypeFan, TypeChassis, TypeBackplane, TypeCable, TypeOther,
}

// ParseComponentType normalizes s and reports whether it names a known type.
func ParseComponentType(s string) (ComponentType, bool) {
	t := ComponentType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range ComponentTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

// IsStorage reports whether t is a drive.
func (t ComponentType) IsStorage() bool {
	return t == TypeHDD || t == TypeSSD || t == TypeNVME
}

// ComponentStatus is the health of a component.
type ComponentStatus string

const (
	StatusOK       ComponentStatus = "OK"
	StatusWarning  ComponentStatus = "WARNING"
	StatusCritical ComponentStatus = "CRITICAL"
	StatusUnknown  ComponentStatus = "UNKNOWN"
	StatusReplaced ComponentStatus = "REPLACED"
)

// ParseComponentStatus normalizes s and reports whether it names a known status.
func ParseComponentStatus(s string) (ComponentStatus, bool) {
	st := ComponentStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusOK, StatusWarning, StatusCritical, StatusUnknown, StatusReplaced:
		return st, true
	}
	return "", false
}

// OriginSource records who created a component. It never changes afterwards.
type OriginSource string

const (
	OriginBMC    OriginSource = "BMC"
	OriginManual OriginSource = "MANUAL"
)

// DiscrepancyReason explains why a component awaits human review.
type DiscrepancyReason string

const (
	ReasonNotFoundInBMC  DiscrepancyReason = "NOT_FOUND_IN_BMC"
	ReasonRemovedFromBMC DiscrepancyReason = "REMOVED_FROM_BMC"
	ReasonDataMismatch   DiscrepancyReason = "DATA_MISMATCH"
	ReasonSerialChanged  DiscrepancyReason = "SERIAL_CHANGED"
)

// HistoryAction is the kind of change recorded in the component history.
type HistoryAction string

const (
	ActionAdded         HistoryAction = "ADDED"
	ActionUpdated       HistoryAction = "UPDATED"
	ActionReplaced      HistoryAction = "REPLACED"
	ActionRemoved       HistoryAction = "REMOVED"
	ActionSerialChanged HistoryAction = "SERIAL_CHANGED"
)

// Metadata is free-form component data stored as a JSON column.
type Metadata map[string]any

// Server is a fleet server. Rows are owned by the server registry; this
// service only touches BMCAddress and LastComponentsFetchAt.
type Server struct {
	ID                    uint       `gorm:"column:id;primaryKey" json:"id"`
	Hostname              *string    `gorm:"column:hostname;size:255" json:"hostname,omitempty"`
	IPAddress             *string    `gorm:"column:ip_address;size:64" json:"ipAddress,omitempty"`
	BMCAddress            *string    `gorm:"column:bmc_address;size:255" json:"bmcAddress,omitempty"`
	APKSerialNumber       *string    `gorm:"column:apk_serial_number;size:255" json:"apkSerialNumber,omitempty"`
	LastComponentsFetchAt *time.Time `gorm:"column:last_components_fetch_at" json:"lastComponentsFetchAt,omitempty"`
	CreatedAt             time.Time  `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt             time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName overrides the table name.
func (Server) TableName() string {
	return "beryll_servers"
}

// ServerComponent is one hardware part installed in a server.
// SerialNumber and SerialNumberYadro are unique across the fleet when set.
type ServerComponent struct {
	ID                   uint               `gorm:"column:id;primaryKey" json:"id"`
	ServerID             uint               `gorm:"column:server_id;not null;index:idx_components_server_type,priority:1" json:"serverId"`
	ComponentType        ComponentType      `gorm:"column:component_type;size:32;not null;index:idx_components_server_type,priority:2" json:"componentType"`
	Name                 string             `gorm:"column:name;size:255;not null" json:"name"`
	Manufacturer         *string            `gorm:"column:manufacturer;size:255" json:"manufacturer,omitempty"`
	Model                *string            `gorm:"column:model;size:255" json:"model,omitempty"`
	SerialNumber         *string            `gorm:"column:serial_number;size:255;uniqueIndex:uq_components_serial" json:"serialNumber,omitempty"`
	SerialNumberYadro    *string            `gorm:"column:serial_number_yadro;size:255;uniqueIndex:uq_components_serial_yadro" json:"serialNumberYadro,omitempty"`
	PartNumber           *string            `gorm:"column:part_number;size:255" json:"partNumber,omitempty"`
	Slot                 *string            `gorm:"column:slot;size:128" json:"slot,omitempty"`
	Status               ComponentStatus    `gorm:"column:status;size:16;not null;default:UNKNOWN" json:"status"`
	Capacity             *int64             `gorm:"column:capacity" json:"capacity,omitempty"`
	Speed                *int64             `gorm:"column:speed" json:"speed,omitempty"`
	FirmwareVersion      *string            `gorm:"column:firmware_version;size:128" json:"firmwareVersion,omitempty"`
	Metadata             Metadata           `gorm:"column:metadata;type:text;serializer:json" json:"metadata,omitempty"`
	OriginSource         OriginSource       `gorm:"column:origin_source;size:16;not null" json:"originSource"`
	BMCDiscrepancy       bool               `gorm:"column:bmc_discrepancy;not null;default:false" json:"bmcDiscrepancy"`
	BMCDiscrepancyReason *DiscrepancyReason `gorm:"column:bmc_discrepancy_reason;size:32" json:"bmcDiscrepancyReason,omitempty"`
	LastUpdatedAt        *time.Time         `gorm:"column:last_updated_at" json:"lastUpdatedAt,omitempty"`
	CreatedAt            time.Time          `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt            time.Time          `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName overrides the table name.
func (ServerComponent) TableName() string {
	return "beryll_server_components"
}

// IsManual reports whether the component was entered by a person.
func (c *ServerComponent) IsManual() bool {
	return c.OriginSource == OriginManual
}

// Serials returns the non-empty serial values of the component.
func (c *ServerComponent) Serials() []string {
	var out []string
	for _, s := range []*string{c.SerialNumber, c.SerialNumberYadro} {
		if s != nil && strings.TrimSpace(*s) != "" {
			out = append(out, strings.TrimSpace(*s))
		}
	}
	return out
}

// Identity captures the fields that tell one physical part from another.
func (c *ServerComponent) Identity() map[string]any {
	return map[string]any{
		"serialNumber":      deref(c.SerialNumber),
		"serialNumberYadro": deref(c.SerialNumberYadro),
		"manufacturer":      deref(c.Manufacturer),
		"model":             deref(c.Model),
		"partNumber":        deref(c.PartNumber),
	}
}

// Snapshot is the value stored in history entries.
func (c *ServerComponent) Snapshot() map[string]any {
	out := c.Identity()
	out["id"] = c.ID
	out["componentType"] = c.ComponentType
	out["name"] = c.Name
	out["slot"] = deref(c.Slot)
	out["status"] = c.Status
	out["firmwareVersion"] = deref(c.FirmwareVersion)
	if c.Capacity != nil {
		out["capacity"] = *c.Capacity
	}
	if c.Speed != nil {
		out["speed"] = *c.Speed
	}
	out["originSource"] = c.OriginSource
	return out
}

// DisplayName builds a name from manufacturer and model, falling back to the type.
func DisplayName(t ComponentType, manufacturer, model *string) string {
	name := strings.TrimSpace(deref(manufacturer) + " " + deref(model))
	if name == "" {
		return string(t)
	}
	return name
}

// ComponentHistory is one append-only history entry.
type ComponentHistory struct {
	ID          uint          `gorm:"column:id;primaryKey" json:"id"`
	Action      HistoryAction `gorm:"column:action;size:32;not null" json:"action"`
	ComponentID uint          `gorm:"column:component_id;not null;index" json:"componentId"`
	ServerID    uint          `gorm:"column:server_id;not null;index:idx_history_server_time,priority:1" json:"serverId"`
	UserID      *uint         `gorm:"column:user_id" json:"userId,omitempty"`
	OldValue    Metadata      `gorm:"column:old_value;type:text;serializer:json" json:"oldValue,omitempty"`
	NewValue    Metadata      `gorm:"column:new_value;type:text;serializer:json" json:"newValue,omitempty"`
	Reason      *string       `gorm:"column:reason;size:512" json:"reason,omitempty"`
	PerformedAt time.Time     `gorm:"column:performed_at;not null;index:idx_history_server_time,priority:2" json:"performedAt"`
}

// TableName overrides the table name.
func (ComponentHistory) TableName() string {
	return "beryll_component_history"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
