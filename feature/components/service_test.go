package components_test

import (
	"context"
	"encoding/json"
	"testing"

	"beryll-inventory/core/bmc"
	"beryll-inventory/core/bmc/mocks"
	"beryll-inventory/core/database"
	corereconcile "beryll-inventory/core/reconcile"
	"beryll-inventory/feature/components"
	"beryll-inventory/feature/components/models"
	"beryll-inventory/feature/components/reconcile"
	"beryll-inventory/feature/components/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

type env struct {
	svc    *components.Service
	store  *store.Store
	engine *reconcile.Engine
	client *mocks.Client
}

func setup(t *testing.T) *env {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	require.NoError(t, db.Create(&models.Server{ID: 1, IPAddress: strPtr("10.0.0.1"), APKSerialNumber: strPtr("APK-1")}).Error)
	require.NoError(t, db.Create(&models.Server{ID: 2, BMCAddress: strPtr("10.0.1.2")}).Error)

	client := &mocks.Client{}
	client.On("Driver").Return("redfish").Maybe()

	st := store.New(db)
	engine := reconcile.NewEngine(st, client, reconcile.Config{Reconcile: corereconcile.Config{CompareTTLSeconds: 60}}, nil, zap.NewNop())
	return &env{
		svc:    components.NewService(st, engine, client, nil, zap.NewNop()),
		store:  st,
		engine: engine,
		client: client,
	}
}

func (e *env) history(t *testing.T, componentID uint) []models.ComponentHistory {
	t.Helper()
	h, err := e.store.ComponentHistory(context.Background(), componentID, store.HistoryFilter{})
	require.NoError(t, err)
	return h
}

func addRAM(t *testing.T, e *env, serverID uint, slot, serial string) *models.ServerComponent {
	t.Helper()
	c, err := e.svc.Add(context.Background(), serverID, components.ComponentInput{
		ComponentType: "ram",
		Manufacturer:  strPtr("Samsung"),
		Model:         strPtr("M393"),
		SerialNumber:  strPtr(serial),
		Slot:          strPtr(slot),
	}, nil)
	require.NoError(t, err)
	return c
}

func TestAdd(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	user := uint(5)

	c, err := e.svc.Add(ctx, 1, components.ComponentInput{
		ComponentType: "cable",
		SerialNumber:  strPtr(" CB-1 "),
		Metadata:      models.Metadata{"length": "2m"},
	}, &user)
	require.NoError(t, err)

	assert.Equal(t, models.TypeCable, c.ComponentType)
	assert.Equal(t, models.OriginManual, c.OriginSource)
	assert.Equal(t, models.StatusOK, c.Status)
	assert.Equal(t, "CABLE", c.Name)
	assert.Equal(t, "CB-1", *c.SerialNumber)

	h := e.history(t, c.ID)
	require.Len(t, h, 1)
	assert.Equal(t, models.ActionAdded, h[0].Action)
	assert.Equal(t, &user, h[0].UserID)
}

func TestAddValidation(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.Add(ctx, 1, components.ComponentInput{ComponentType: "toaster", SerialNumber: strPtr("X")}, nil)
	assert.ErrorIs(t, err, components.ErrValidation)

	_, err = e.svc.Add(ctx, 1, components.ComponentInput{ComponentType: "CPU"}, nil)
	assert.ErrorIs(t, err, components.ErrValidation)

	_, err = e.svc.Add(ctx, 1, components.ComponentInput{ComponentType: "CPU", SerialNumber: strPtr("X"), Status: "broken"}, nil)
	assert.ErrorIs(t, err, components.ErrValidation)

	_, err = e.svc.Add(ctx, 99, components.ComponentInput{ComponentType: "CPU", SerialNumber: strPtr("X")}, nil)
	assert.ErrorIs(t, err, store.ErrServerNotFound)
}

func TestAddSerialConflictAcrossServers(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	first := addRAM(t, e, 1, "DIMM-1", "X1")

	_, err := e.svc.Add(ctx, 2, components.ComponentInput{
		ComponentType:     "RAM",
		SerialNumberYadro: strPtr("X1"),
	}, nil)
	var conflict *store.SerialConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.ComponentID)
	assert.Equal(t, uint(1), conflict.ServerID)

	list, err := e.store.ListByServer(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddWhileReconciling(t *testing.T) {
	e := setup(t)
	unlock, ok := e.engine.Locks().TryLock(1)
	require.True(t, ok)
	defer unlock()

	_, err := e.svc.Add(context.Background(), 1, components.ComponentInput{ComponentType: "CPU", SerialNumber: strPtr("C")}, nil)
	assert.ErrorIs(t, err, reconcile.ErrReconciliationInProgress)
}

func TestUpdate(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	c := addRAM(t, e, 1, "DIMM-1", "R1")

	got, err := e.svc.Update(ctx, c.ID, components.ComponentPatch{
		FirmwareVersion: strPtr("2.0"),
		Status:          strPtr("warning"),
		Metadata:        json.RawMessage(`{"rank":2}`),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "2.0", *got.FirmwareVersion)
	assert.Equal(t, models.StatusWarning, got.Status)
	assert.Equal(t, float64(2), got.Metadata["rank"])

	h := e.history(t, c.ID)
	require.Len(t, h, 2)
	assert.Equal(t, models.ActionUpdated, h[0].Action)
	assert.Contains(t, h[0].NewValue, "firmwareVersion")
	assert.Contains(t, h[0].NewValue, "status")

	// metadata is merged key by key
	got, err = e.svc.Update(ctx, c.ID, components.ComponentPatch{Metadata: json.RawMessage(`{"ecc":true}`)}, nil)
	require.NoError(t, err)
	assert.Equal(t, true, got.Metadata["ecc"])
	assert.Equal(t, float64(2), got.Metadata["rank"])

	// no-op writes nothing
	_, err = e.svc.Update(ctx, c.ID, components.ComponentPatch{FirmwareVersion: strPtr("2.0")}, nil)
	require.NoError(t, err)
	assert.Len(t, e.history(t, c.ID), 3)

	got, err = e.svc.Update(ctx, c.ID, components.ComponentPatch{Metadata: json.RawMessage(`null`)}, nil)
	require.NoError(t, err)
	assert.Nil(t, got.Metadata)
}

func TestUpdateSerialChange(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	c := addRAM(t, e, 1, "DIMM-1", "R1")
	addRAM(t, e, 2, "DIMM-1", "TAKEN")

	_, err := e.svc.Update(ctx, c.ID, components.ComponentPatch{SerialNumber: strPtr("TAKEN")}, nil)
	assert.ErrorIs(t, err, store.ErrSerialConflict)

	got, err := e.svc.Update(ctx, c.ID, components.ComponentPatch{SerialNumber: strPtr("R2")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "R2", *got.SerialNumber)

	h := e.history(t, c.ID)
	assert.Equal(t, models.ActionSerialChanged, h[0].Action)
	assert.Equal(t, "R1", h[0].OldValue["serialNumber"])
	assert.Equal(t, "R2", h[0].NewValue["serialNumber"])
}

func TestUpdateSerials(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	c := addRAM(t, e, 1, "DIMM-1", "R1")

	_, err := e.svc.UpdateSerials(ctx, c.ID, components.SerialsInput{}, nil)
	assert.ErrorIs(t, err, components.ErrValidation)

	got, err := e.svc.UpdateSerials(ctx, c.ID, components.SerialsInput{SerialNumberYadro: strPtr("Y1")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "R1", *got.SerialNumber)
	assert.Equal(t, "Y1", *got.SerialNumberYadro)
	assert.Equal(t, models.ActionSerialChanged, e.history(t, c.ID)[0].Action)
}

func TestReplace(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	c := addRAM(t, e, 1, "DIMM-1", "OLD")
	user := uint(3)

	_, err := e.svc.Replace(ctx, c.ID, components.ReplaceInput{}, nil)
	assert.ErrorIs(t, err, components.ErrValidation)

	got, err := e.svc.Replace(ctx, c.ID, components.ReplaceInput{
		NewSerialNumber: "NEW",
		NewModel:        "M394",
		Reason:          "ECC errors",
	}, &user)
	require.NoError(t, err)

	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "DIMM-1", *got.Slot)
	assert.Equal(t, "NEW", *got.SerialNumber)
	assert.Equal(t, "M394", *got.Model)
	assert.Equal(t, "Samsung", *got.Manufacturer)
	assert.Equal(t, "Samsung M394", got.Name)

	reloaded, err := e.store.Get(ctx, c.ID)
	require.NoError(t, err)
	lineage, ok := reloaded.Metadata["replacements"].([]any)
	require.True(t, ok)
	require.Len(t, lineage, 1)
	prev := lineage[0].(map[string]any)
	assert.Equal(t, "OLD", prev["serialNumber"])
	assert.Equal(t, "ECC errors", prev["reason"])

	h := e.history(t, c.ID)
	assert.Equal(t, models.ActionReplaced, h[0].Action)
	assert.Equal(t, "OLD", h[0].OldValue["serialNumber"])
	assert.Equal(t, "NEW", h[0].NewValue["serialNumber"])
	require.NotNil(t, h[0].Reason)
	assert.Equal(t, "ECC errors", *h[0].Reason)
}

func TestDelete(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	c := addRAM(t, e, 1, "DIMM-1", "R1")

	_, err := e.svc.Delete(ctx, c.ID, "returned to vendor", nil)
	require.NoError(t, err)

	_, err = e.svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, store.ErrComponentNotFound)

	h := e.history(t, c.ID)
	require.Len(t, h, 2)
	assert.Equal(t, models.ActionRemoved, h[0].Action)
	assert.Equal(t, "returned to vendor", *h[0].Reason)

	_, err = e.svc.Delete(ctx, c.ID, "", nil)
	assert.ErrorIs(t, err, store.ErrComponentNotFound)
}

func TestList(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	a := addRAM(t, e, 1, "DIMM-1", "R1")
	addRAM(t, e, 1, "DIMM-2", "R2")
	require.NoError(t, e.store.SetDiscrepancy(ctx, a.ID, models.ReasonRemovedFromBMC))

	resp, err := e.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.Summary[models.TypeRAM])
	assert.Len(t, resp.Grouped[models.TypeRAM], 2)
	assert.Equal(t, 1, resp.DiscrepancyCount)
	assert.Equal(t, "APK-1", *resp.Server.APKSerialNumber)
}

func TestCheckSerialAndScan(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	c := addRAM(t, e, 1, "DIMM-1", "SN-12345")

	res, err := e.svc.CheckSerial(ctx, components.CheckSerialInput{SerialNumberYadro: "SN-12345"})
	require.NoError(t, err)
	assert.False(t, res.Unique)
	require.NotNil(t, res.Conflict)
	assert.Equal(t, c.ID, res.Conflict.ID)
	require.NotNil(t, res.Conflict.Server)
	assert.Equal(t, uint(1), res.Conflict.Server.ID)
	assert.Equal(t, &components.SerialOwner{ComponentID: c.ID, ServerID: 1, ServerSerial: "APK-1"}, res.ConflictsWith)

	res, err = e.svc.CheckSerial(ctx, components.CheckSerialInput{SerialNumber: "SN-12345", ExcludeComponentID: c.ID})
	require.NoError(t, err)
	assert.True(t, res.Unique)

	scan, err := e.svc.Scan(ctx, "SN-12345")
	require.NoError(t, err)
	assert.True(t, scan.Found)

	scan, err = e.svc.Scan(ctx, "12345")
	require.NoError(t, err)
	assert.False(t, scan.Found)
	assert.Len(t, scan.Suggestions, 1)

	_, err = e.svc.Scan(ctx, " ")
	assert.ErrorIs(t, err, components.ErrValidation)
}

func TestSearch(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	addRAM(t, e, 1, "DIMM-1", "R1")

	_, err := e.svc.Search(ctx, store.SearchFilter{})
	assert.ErrorIs(t, err, components.ErrValidation)

	found, err := e.svc.Search(ctx, store.SearchFilter{Query: "Samsung"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestBMCAddressAndCheck(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	srv, err := e.svc.UpdateBMCAddress(ctx, 1, " 10.9.9.9 ")
	require.NoError(t, err)
	assert.Equal(t, "10.9.9.9", *srv.BMCAddress)

	e.client.On("Check", mock.Anything, bmc.Target{ServerID: 1, Address: "10.9.9.9"}).
		Return(&bmc.CheckResult{Reachable: true, Driver: "redfish", RedfishVersion: "1.11.0"}, nil).Once()

	res, err := e.svc.CheckBMC(ctx, 1)
	require.NoError(t, err)
	assert.True(t, res.Reachable)
	assert.Equal(t, "1.11.0", res.RedfishVersion)

	_, err = e.svc.UpdateBMCAddress(ctx, 99, "x")
	assert.ErrorIs(t, err, store.ErrServerNotFound)
}
