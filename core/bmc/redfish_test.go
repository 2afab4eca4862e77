package bmc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func members(links ...string) map[string]any {
	out := make([]map[string]string, 0, len(links))
	for _, l := range links {
		out = append(out, map[string]string{"@odata.id": l})
	}
	return map[string]any{"Members": out}
}

func redfishFixture() map[string]any {
	return map[string]any{
		"/redfish/v1/": map[string]any{"RedfishVersion": "1.11.0", "Name": "Root Service", "UUID": "abc"},

		"/redfish/v1/Systems/system/Processors": members("/redfish/v1/Systems/system/Processors/cpu0"),
		"/redfish/v1/Systems/system/Processors/cpu0": map[string]any{
			"Id": "cpu0", "Socket": "CPU 0", "Manufacturer": "Intel", "Model": "Xeon Gold 6338",
			"SerialNumber": "CPU-SN-1", "MaxSpeedMHz": 3200, "TotalCores": 32, "TotalThreads": 64,
			"Status": map[string]string{"State": "Enabled", "Health": "OK"},
		},

		"/redfish/v1/Systems/system/Memory": members(
			"/redfish/v1/Systems/system/Memory/dimm0",
			"/redfish/v1/Systems/system/Memory/dimm1",
		),
		"/redfish/v1/Systems/system/Memory/dimm0": map[string]any{
			"Id": "dimm0", "DeviceLocator": "A0", "Manufacturer": "Samsung", "PartNumber": "M393A4K40",
			"SerialNumber": "RAM-SN-1", "MemoryDeviceType": "DDR4", "CapacityMiB": 32768, "OperatingSpeedMhz": "2933",
			"Status": map[string]string{"State": "Enabled", "Health": "Warning"},
		},
		// empty slot
		"/redfish/v1/Systems/system/Memory/dimm1": map[string]any{"Id": "dimm1", "CapacityMiB": 0},

		"/redfish/v1/Systems/system/Storage": members("/redfish/v1/Systems/system/Storage/1"),
		"/redfish/v1/Systems/system/Storage/1": map[string]any{
			"Id": "1",
			"StorageControllers": []map[string]any{
				{"MemberId": "0", "Model": "MegaRAID 9460", "SerialNumber": "RAID-SN-1", "FirmwareVersion": "5.1"},
			},
			"Drives": []map[string]string{{"@odata.id": "/redfish/v1/Systems/system/Storage/1/Drives/0"}},
		},
		"/redfish/v1/Systems/system/Storage/1/Drives/0": map[string]any{
			"Id": "0", "Model": "PM9A3", "SerialNumber": "NVME-SN-1", "Protocol": "NVMe",
			"MediaType": "SSD", "CapacityBytes": 1920383410176, "Revision": "GDC5",
			"PhysicalLocation": map[string]any{"PartLocation": map[string]any{"ServiceLabel": "Bay 0"}},
		},

		"/redfish/v1/Systems/system/EthernetInterfaces": members("/redfish/v1/Systems/system/EthernetInterfaces/eth0"),
		"/redfish/v1/Systems/system/EthernetInterfaces/eth0": map[string]any{
			"Id": "eth0", "Name": "Ethernet Interface", "MACAddress": "aa:bb:cc:dd:ee:ff", "SpeedMbps": 10000,
		},

		"/redfish/v1/Chassis/chassis": map[string]any{
			"Id": "chassis", "Manufacturer": "Yadro", "Model": "VEGMAN S220", "SerialNumber": "MB-SN-1", "SKU": "SKU-1",
		},
		"/redfish/v1/Managers/bmc": map[string]any{
			"Id": "bmc", "Model": "OpenBMC", "FirmwareVersion": "2.14.0",
			"Status": map[string]string{"State": "Enabled", "Health": "OK"},
		},
	}
}

func newRedfishServer(t *testing.T, fixture map[string]any, hits *atomic.Int32) (*httptest.Server, Target) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		body, ok := fixture[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if status, isStatus := body.(int); isStatus {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	return srv, Target{ServerID: 7, Address: u.Host}
}

func testRedfishClient() *RedfishClient {
	return NewRedfishClient(Config{
		Username:    "admin",
		Password:    "secret",
		Protocol:    "http",
		Retries:     1,
		RetryWaitMs: 1,
	}, zap.NewNop())
}

func byType(comps []Component) map[string][]Component {
	out := make(map[string][]Component)
	for _, c := range comps {
		out[c.Type] = append(out[c.Type], c)
	}
	return out
}

func TestRedfishInventory(t *testing.T) {
	_, target := newRedfishServer(t, redfishFixture(), nil)

	comps, err := testRedfishClient().Inventory(context.Background(), target)
	require.NoError(t, err)

	got := byType(comps)
	require.Len(t, got[TypeCPU], 1)
	cpu := got[TypeCPU][0]
	assert.Equal(t, "Xeon Gold 6338", cpu.Name)
	assert.Equal(t, "CPU 0", cpu.Slot)
	assert.Equal(t, int64(3200), cpu.Speed)
	assert.Equal(t, StatusOK, cpu.Status)
	assert.Equal(t, int64(32), cpu.Metadata["cores"])

	require.Len(t, got[TypeRAM], 1, "empty DIMM slots are skipped")
	ram := got[TypeRAM][0]
	assert.Equal(t, "A0", ram.Slot)
	assert.Equal(t, "Samsung 32GB DDR4", ram.Name)
	assert.Equal(t, int64(32768)*1024*1024, ram.Capacity)
	assert.Equal(t, int64(2933), ram.Speed)
	assert.Equal(t, StatusWarning, ram.Status)

	require.Len(t, got[TypeRAID], 1)
	assert.Equal(t, "0", got[TypeRAID][0].Slot)
	assert.Equal(t, "5.1", got[TypeRAID][0].FirmwareVersion)

	require.Len(t, got[TypeNVME], 1)
	nvme := got[TypeNVME][0]
	assert.Equal(t, "Bay 0", nvme.Slot)
	assert.Equal(t, "GDC5", nvme.FirmwareVersion)
	assert.Equal(t, int64(1920383410176), nvme.Capacity)
	assert.Equal(t, "PM9A3 1788GB", nvme.Name)

	require.Len(t, got[TypeNIC], 1)
	assert.Equal(t, "eth0", got[TypeNIC][0].Slot)
	assert.Equal(t, int64(10000), got[TypeNIC][0].Speed)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", got[TypeNIC][0].Metadata["macAddress"])
	assert.Equal(t, StatusUnknown, got[TypeNIC][0].Status)

	require.Len(t, got[TypeMotherboard], 1)
	assert.Equal(t, "Main", got[TypeMotherboard][0].Slot)
	assert.Equal(t, "SKU-1", got[TypeMotherboard][0].PartNumber)

	require.Len(t, got[TypeBMC], 1)
	assert.Equal(t, "2.14.0", got[TypeBMC][0].FirmwareVersion)
}

func TestRedfishInventoryFallsBackToNumericSystem(t *testing.T) {
	fixture := map[string]any{
		"/redfish/v1/":                     map[string]any{},
		"/redfish/v1/Systems/1/Processors": members("/redfish/v1/Systems/1/Processors/P0"),
		"/redfish/v1/Systems/1/Processors/P0": map[string]any{
			"Id": "P0", "Manufacturer": "AMD",
		},
		"/redfish/v1/Chassis": members("/redfish/v1/Chassis/Self"),
		"/redfish/v1/Chassis/Self": map[string]any{
			"Manufacturer": "Supermicro", "Model": "H12",
		},
	}
	_, target := newRedfishServer(t, fixture, nil)

	comps, err := testRedfishClient().Inventory(context.Background(), target)
	require.NoError(t, err)

	got := byType(comps)
	require.Len(t, got[TypeCPU], 1)
	assert.Equal(t, "P0", got[TypeCPU][0].Slot)
	assert.Equal(t, "AMD P0", got[TypeCPU][0].Name)
	require.Len(t, got[TypeMotherboard], 1)
	assert.Equal(t, "H12", got[TypeMotherboard][0].Name)
	assert.Empty(t, got[TypeBMC])
}

func TestRedfishInventoryFailsOnBrokenMember(t *testing.T) {
	fixture := redfishFixture()
	fixture["/redfish/v1/Systems/system/Memory/dimm0"] = http.StatusInternalServerError

	var hits atomic.Int32
	_, target := newRedfishServer(t, fixture, &hits)

	_, err := testRedfishClient().Inventory(context.Background(), target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "memory")
}

func TestRedfishInventoryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	u, _ := url.Parse(srv.URL)

	// root answers 503 then 404: a retry happened and the 404 is not retried.
	_, err := testRedfishClient().Inventory(context.Background(), Target{Address: u.Host})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, errNotFound)
	assert.Equal(t, int32(2), calls.Load())
}

func TestRedfishUnauthorized(t *testing.T) {
	_, target := newRedfishServer(t, redfishFixture(), nil)

	c := testRedfishClient()
	c.cfg.Password = "wrong"

	_, err := c.Inventory(context.Background(), target)
	assert.ErrorIs(t, err, errUnauthorized)
}

func TestRedfishNoAddress(t *testing.T) {
	_, err := testRedfishClient().Inventory(context.Background(), Target{ServerID: 1})
	assert.ErrorIs(t, err, ErrNoAddress)

	_, err = testRedfishClient().Check(context.Background(), Target{ServerID: 1})
	assert.ErrorIs(t, err, ErrNoAddress)
}

func TestRedfishCheck(t *testing.T) {
	_, target := newRedfishServer(t, redfishFixture(), nil)

	res, err := testRedfishClient().Check(context.Background(), target)
	require.NoError(t, err)
	assert.True(t, res.Reachable)
	assert.Equal(t, "1.11.0", res.RedfishVersion)
	assert.Equal(t, "abc", res.UUID)

	c := testRedfishClient()
	c.cfg.Password = "wrong"
	res, err = c.Check(context.Background(), target)
	require.NoError(t, err)
	assert.False(t, res.Reachable)
	assert.NotEmpty(t, res.Error)
}

func TestDetectDriveType(t *testing.T) {
	tests := []struct {
		media, protocol, want string
	}{
		{"SSD", "NVMe", TypeNVME},
		{"", "PCIe", TypeNVME},
		{"SSD", "SATA", TypeSSD},
		{"HDD", "SAS", TypeHDD},
		{"Rotational", "", TypeHDD},
		{"Sata-HDD", "", TypeHDD},
		{"NVMe-PCIe-SSD", "", TypeNVME},
		{"Sata-SSD", "", TypeSSD},
		{"", "", TypeSSD},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectDriveType(tt.media, tt.protocol), "%s/%s", tt.media, tt.protocol)
	}
}
