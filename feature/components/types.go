package components

import (
	"encoding/json"
	"errors"
	"time"

	"beryll-inventory/feature/components/models"
)

// ErrValidation is returned for malformed requests.
var ErrValidation = errors.New("validation failed")

// ServerInfo is the server block of a components listing.
type ServerInfo struct {
	ID                    uint       `json:"id"`
	Hostname              *string    `json:"hostname,omitempty"`
	IPAddress             *string    `json:"ipAddress,omitempty"`
	BMCAddress            *string    `json:"bmcAddress,omitempty"`
	APKSerialNumber       *string    `json:"apkSerialNumber,omitempty"`
	LastComponentsFetchAt *time.Time `json:"lastComponentsFetchAt,omitempty"`
}

// ComponentsResponse lists the inventory of one server.
type ComponentsResponse struct {
	Server           ServerInfo                                        `json:"server"`
	Components       []models.ServerComponent                          `json:"components"`
	Grouped          map[models.ComponentType][]models.ServerComponent `json:"grouped"`
	Summary          map[models.ComponentType]int                      `json:"summary"`
	Total            int                                               `json:"total"`
	DiscrepancyCount int                                               `json:"discrepancyCount"`
}

// ComponentInput is the body of a manual add.
type ComponentInput struct {
	ComponentType     string          `json:"componentType"`
	Name              string          `json:"name"`
	Manufacturer      *string         `json:"manufacturer"`
	Model             *string         `json:"model"`
	SerialNumber      *string         `json:"serialNumber"`
	SerialNumberYadro *string         `json:"serialNumberYadro"`
	PartNumber        *string         `json:"partNumber"`
	Slot              *string         `json:"slot"`
	Capacity          *int64          `json:"capacity"`
	Speed             *int64          `json:"speed"`
	FirmwareVersion   *string         `json:"firmwareVersion"`
	Status            string          `json:"status"`
	Metadata          models.Metadata `json:"metadata"`
}

// ComponentPatch is the body of a partial update. Absent fields are left
// alone and empty strings clear a field. Metadata is merged key by key; a
// JSON null clears it.
type ComponentPatch struct {
	Name              *string         `json:"name"`
	Manufacturer      *string         `json:"manufacturer"`
	Model             *string         `json:"model"`
	SerialNumber      *string         `json:"serialNumber"`
	SerialNumberYadro *string         `json:"serialNumberYadro"`
	PartNumber        *string         `json:"partNumber"`
	Slot              *string         `json:"slot"`
	Capacity          *int64          `json:"capacity"`
	Speed             *int64          `json:"speed"`
	FirmwareVersion   *string         `json:"firmwareVersion"`
	Status            *string         `json:"status"`
	Metadata          json.RawMessage `json:"metadata" swaggertype:"object"`
}

// SerialsInput is the body of a serial update.
type SerialsInput struct {
	SerialNumber      *string `json:"serialNumber"`
	SerialNumberYadro *string `json:"serialNumberYadro"`
}

// ReplaceInput describes the part that replaces a component in its slot.
type ReplaceInput struct {
	NewSerialNumber      string `json:"newSerialNumber"`
	NewSerialNumberYadro string `json:"newSerialNumberYadro"`
	NewManufacturer      string `json:"newManufacturer"`
	NewModel             string `json:"newModel"`
	NewPartNumber        string `json:"newPartNumber"`
	Reason               string `json:"reason"`
}

// CheckSerialInput is the body of a fleet-wide serial probe.
type CheckSerialInput struct {
	SerialNumber       string `json:"serialNumber"`
	SerialNumberYadro  string `json:"serialNumberYadro"`
	ExcludeComponentID uint   `json:"excludeComponentId"`
}

// SerialConflict describes the owner of a taken serial.
type SerialConflict struct {
	ID                uint                 `json:"id"`
	Name              string               `json:"name"`
	ComponentType     models.ComponentType `json:"componentType"`
	SerialNumber      *string              `json:"serialNumber,omitempty"`
	SerialNumberYadro *string              `json:"serialNumberYadro,omitempty"`
	Serial            string               `json:"serial"`
	Server            *ServerInfo          `json:"server,omitempty"`
}

// SerialOwner identifies the component holding a serial and its server.
// ServerSerial is the owning server's APK serial number.
type SerialOwner struct {
	ComponentID  uint   `json:"componentId"`
	ServerID     uint   `json:"serverId"`
	ServerSerial string `json:"serverSerial"`
}

// CheckSerialResult is the answer of a serial probe.
type CheckSerialResult struct {
	Unique        bool            `json:"unique"`
	ConflictsWith *SerialOwner    `json:"conflictsWith,omitempty"`
	Conflict      *SerialConflict `json:"conflict,omitempty"`
}

// AddResponse wraps a manually added component.
type AddResponse struct {
	Success   bool                    `json:"success"`
	Message   string                  `json:"message"`
	Component *models.ServerComponent `json:"component"`
}

// ServerHistoryResponse wraps the history of one server.
type ServerHistoryResponse struct {
	Success  bool                      `json:"success"`
	ServerID uint                      `json:"serverId"`
	Count    int                       `json:"count"`
	History  []models.ComponentHistory `json:"history"`
}

// ComponentHistoryResponse wraps the history of one component.
type ComponentHistoryResponse struct {
	Success     bool                      `json:"success"`
	ComponentID uint                      `json:"componentId"`
	History     []models.ComponentHistory `json:"history"`
}

// ScanResult is the answer of a barcode scan.
type ScanResult struct {
	Found       bool                     `json:"found"`
	Component   *models.ServerComponent  `json:"component,omitempty"`
	Suggestions []models.ServerComponent `json:"suggestions,omitempty"`
}

// FetchRequest is the body of a reconciliation request.
type FetchRequest struct {
	Mode           string `json:"mode"`
	PreserveManual *bool  `json:"preserveManual"`
}

// ResolveRequest is the body of a discrepancy resolution.
type ResolveRequest struct {
	Resolution string `json:"resolution"`
}

// BMCAddressRequest is the body of a BMC address update.
type BMCAddressRequest struct {
	BMCAddress string `json:"bmcAddress"`
}

func serverInfo(s *models.Server) ServerInfo {
	return ServerInfo{
		ID:                    s.ID,
		Hostname:              s.Hostname,
		IPAddress:             s.IPAddress,
		BMCAddress:            s.BMCAddress,
		APKSerialNumber:       s.APKSerialNumber,
		LastComponentsFetchAt: s.LastComponentsFetchAt,
	}
}
