package components

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"beryll-inventory/core/bmc"
	"beryll-inventory/core/events"
	"beryll-inventory/core/metrics"
	corereconcile "beryll-inventory/core/reconcile"
	"beryll-inventory/core/utils"
	"beryll-inventory/feature/components/models"
	"beryll-inventory/feature/components/reconcile"
	"beryll-inventory/feature/components/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Service handles component inventory operations.
type Service struct {
	store     *store.Store
	engine    *reconcile.Engine
	client    bmc.Client
	publisher events.Publisher
	logger    *zap.Logger
	checks    singleflight.Group
	now       func() time.Time
}

// NewService creates a new components service. publisher may be nil.
func NewService(st *store.Store, engine *reconcile.Engine, client bmc.Client, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{
		store:     st,
		engine:    engine,
		client:    client,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the inventory of a server grouped by type.
func (s *Service) List(ctx context.Context, serverID uint) (*ComponentsResponse, error) {
	srv, err := s.store.GetServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	comps, err := s.store.ListByServer(ctx, serverID)
	if err != nil {
		return nil, err
	}

	resp := &ComponentsResponse{
		Server:     serverInfo(srv),
		Components: comps,
		Grouped:    make(map[models.ComponentType][]models.ServerComponent),
		Summary:    make(map[models.ComponentType]int),
		Total:      len(comps),
	}
	for _, c := range comps {
		resp.Grouped[c.ComponentType] = append(resp.Grouped[c.ComponentType], c)
		resp.Summary[c.ComponentType]++
		if c.BMCDiscrepancy || s.engine.IsFlagged(serverID, c.ID) {
			resp.DiscrepancyCount++
		}
	}
	return resp, nil
}

// Get returns one component.
func (s *Service) Get(ctx context.Context, id uint) (*models.ServerComponent, error) {
	return s.store.Get(ctx, id)
}

// Reconcile runs a reconciliation of the server in mode.
func (s *Service) Reconcile(ctx context.Context, serverID uint, mode corereconcile.Mode, userID *uint) (*reconcile.Report, error) {
	return s.engine.Reconcile(ctx, serverID, mode, userID)
}

// Resolve settles a flagged component.
func (s *Service) Resolve(ctx context.Context, serverID, componentID uint, resolution string, userID *uint) (*reconcile.ResolveResult, error) {
	r, err := reconcile.ParseResolution(resolution)
	if err != nil {
		return nil, err
	}
	return s.engine.Resolve(ctx, serverID, componentID, r, userID)
}

// ServerHistory returns history entries of a server, newest first.
func (s *Service) ServerHistory(ctx context.Context, serverID uint, f store.HistoryFilter) ([]models.ComponentHistory, error) {
	if _, err := s.store.GetServer(ctx, serverID); err != nil {
		return nil, err
	}
	return nonNil(s.store.ServerHistory(ctx, serverID, f))
}

// ComponentHistory returns history entries of a component, newest first.
// Entries outlive the component itself.
func (s *Service) ComponentHistory(ctx context.Context, componentID uint, f store.HistoryFilter) ([]models.ComponentHistory, error) {
	return nonNil(s.store.ComponentHistory(ctx, componentID, f))
}

func nonNil(entries []models.ComponentHistory, err error) ([]models.ComponentHistory, error) {
	if err == nil && entries == nil {
		entries = []models.ComponentHistory{}
	}
	return entries, err
}

// withServerLock runs fn while holding the reconciliation lock of serverID.
func (s *Service) withServerLock(serverID uint, fn func() error) error {
	unlock, ok := s.engine.Locks().TryLock(serverID)
	if !ok {
		return fmt.Errorf("%w: server %d", reconcile.ErrReconciliationInProgress, serverID)
	}
	defer unlock()
	return fn()
}

// Add creates a manually documented component.
func (s *Service) Add(ctx context.Context, serverID uint, in ComponentInput, userID *uint) (*models.ServerComponent, error) {
	typ, ok := models.ParseComponentType(in.ComponentType)
	if !ok {
		return nil, fmt.Errorf("%w: unknown component type %q", ErrValidation, in.ComponentType)
	}

	status := models.StatusOK
	if in.Status != "" {
		st, ok := models.ParseComponentStatus(in.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, in.Status)
		}
		status = st
	}

	c := &models.ServerComponent{
		ServerID:          serverID,
		ComponentType:     typ,
		Name:              strings.TrimSpace(in.Name),
		Manufacturer:      clean(in.Manufacturer),
		Model:             clean(in.Model),
		SerialNumber:      clean(in.SerialNumber),
		SerialNumberYadro: clean(in.SerialNumberYadro),
		PartNumber:        clean(in.PartNumber),
		Slot:              clean(in.Slot),
		Capacity:          in.Capacity,
		Speed:             in.Speed,
		FirmwareVersion:   clean(in.FirmwareVersion),
		Status:            status,
		Metadata:          in.Metadata,
		OriginSource:      models.OriginManual,
	}
	if len(c.Serials()) == 0 {
		return nil, fmt.Errorf("%w: at least one serial number is required", ErrValidation)
	}
	if c.Name == "" {
		c.Name = models.DisplayName(typ, c.Manufacturer, c.Model)
	}

	err := s.withServerLock(serverID, func() error {
		return s.store.Transaction(ctx, func(tx *store.Store) error {
			if _, err := tx.GetServer(ctx, serverID); err != nil {
				return err
			}
			if err := tx.EnsureSerialsUnique(ctx, c, store.ConflictFilter{}); err != nil {
				return err
			}
			now := s.now()
			c.LastUpdatedAt = &now
			if err := tx.Create(ctx, c); err != nil {
				return err
			}
			return s.record(ctx, tx, models.ActionAdded, c, nil, c.Snapshot(), nil, userID)
		})
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, c, models.ActionAdded, userID)
	return c, nil
}

// Update applies a partial update to a component.
func (s *Service) Update(ctx context.Context, id uint, p ComponentPatch, userID *uint) (*models.ServerComponent, error) {
	return s.mutate(ctx, id, userID, func(c *models.ServerComponent) (models.HistoryAction, diffSet, error) {
		d := newDiffSet()

		if p.Name != nil {
			name := strings.TrimSpace(*p.Name)
			if name == "" {
				name = models.DisplayName(c.ComponentType, c.Manufacturer, c.Model)
			}
			d.str("name", "name", &c.Name, name)
		}
		d.ptr("manufacturer", "manufacturer", &c.Manufacturer, p.Manufacturer)
		d.ptr("model", "model", &c.Model, p.Model)
		d.ptr("serialNumber", "serial_number", &c.SerialNumber, p.SerialNumber)
		d.ptr("serialNumberYadro", "serial_number_yadro", &c.SerialNumberYadro, p.SerialNumberYadro)
		d.ptr("partNumber", "part_number", &c.PartNumber, p.PartNumber)
		d.ptr("slot", "slot", &c.Slot, p.Slot)
		d.ptr("firmwareVersion", "firmware_version", &c.FirmwareVersion, p.FirmwareVersion)
		d.num("capacity", "capacity", &c.Capacity, p.Capacity)
		d.num("speed", "speed", &c.Speed, p.Speed)

		if p.Status != nil {
			st, ok := models.ParseComponentStatus(*p.Status)
			if !ok {
				return "", d, fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
			}
			d.str("status", "status", (*string)(&c.Status), string(st))
		}

		if len(p.Metadata) > 0 {
			if err := d.metadata(c, p.Metadata); err != nil {
				return "", d, err
			}
		}

		if d.serialChanged {
			return models.ActionSerialChanged, d, nil
		}
		return models.ActionUpdated, d, nil
	})
}

// UpdateSerials replaces the serial numbers of a component.
func (s *Service) UpdateSerials(ctx context.Context, id uint, in SerialsInput, userID *uint) (*models.ServerComponent, error) {
	if utils.FirstNonEmpty(deref(in.SerialNumber), deref(in.SerialNumberYadro)) == "" {
		return nil, fmt.Errorf("%w: at least one serial number is required", ErrValidation)
	}

	return s.mutate(ctx, id, userID, func(c *models.ServerComponent) (models.HistoryAction, diffSet, error) {
		d := newDiffSet()
		d.ptr("serialNumber", "serial_number", &c.SerialNumber, in.SerialNumber)
		d.ptr("serialNumberYadro", "serial_number_yadro", &c.SerialNumberYadro, in.SerialNumberYadro)
		return models.ActionSerialChanged, d, nil
	})
}

// Replace records that a new physical part took the place of a component.
// The row keeps its id and slot; the previous identity is appended to
// metadata.replacements.
func (s *Service) Replace(ctx context.Context, id uint, in ReplaceInput, userID *uint) (*models.ServerComponent, error) {
	newSerial := strings.TrimSpace(in.NewSerialNumber)
	newYadro := strings.TrimSpace(in.NewSerialNumberYadro)
	if newSerial == "" && newYadro == "" {
		return nil, fmt.Errorf("%w: the serial number of the new part is required", ErrValidation)
	}

	return s.mutate(ctx, id, userID, func(c *models.ServerComponent) (models.HistoryAction, diffSet, error) {
		d := newDiffSet()
		d.old = c.Identity()
		previous := c.Identity()

		c.SerialNumber = utils.StringPtr(newSerial)
		c.SerialNumberYadro = utils.StringPtr(newYadro)
		if v := strings.TrimSpace(in.NewManufacturer); v != "" {
			c.Manufacturer = &v
		}
		if v := strings.TrimSpace(in.NewModel); v != "" {
			c.Model = &v
		}
		if v := strings.TrimSpace(in.NewPartNumber); v != "" {
			c.PartNumber = &v
		}
		if in.NewManufacturer != "" || in.NewModel != "" {
			c.Name = models.DisplayName(c.ComponentType, c.Manufacturer, c.Model)
		}
		c.Status = models.StatusOK
		c.BMCDiscrepancy = false
		c.BMCDiscrepancyReason = nil

		if c.Metadata == nil {
			c.Metadata = models.Metadata{}
		}
		lineage, _ := c.Metadata["replacements"].([]any)
		previous["replacedAt"] = s.now().Format(time.RFC3339)
		if userID != nil {
			previous["replacedBy"] = *userID
		}
		if in.Reason != "" {
			previous["reason"] = in.Reason
		}
		c.Metadata["replacements"] = append(lineage, previous)

		d.new = c.Identity()
		d.reason = in.Reason
		d.serialChanged = true
		d.columns = append(d.columns,
			"serial_number", "serial_number_yadro", "manufacturer", "model", "part_number",
			"name", "status", "metadata", "bmc_discrepancy", "bmc_discrepancy_reason")
		return models.ActionReplaced, d, nil
	})
}

// Delete removes a component and records why.
func (s *Service) Delete(ctx context.Context, id uint, reason string, userID *uint) (*models.ServerComponent, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	err = s.withServerLock(c.ServerID, func() error {
		return s.store.Transaction(ctx, func(tx *store.Store) error {
			if err := tx.Delete(ctx, c.ID); err != nil {
				return err
			}
			return s.record(ctx, tx, models.ActionRemoved, c, c.Snapshot(), nil, utils.StringPtr(reason), userID)
		})
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, c, models.ActionRemoved, userID)
	return c, nil
}

// mutate loads a component, lets edit change it, then writes the touched
// columns and one history entry inside a transaction under the server lock.
// Edits that change nothing write nothing.
func (s *Service) mutate(ctx context.Context, id uint, userID *uint, edit func(c *models.ServerComponent) (models.HistoryAction, diffSet, error)) (*models.ServerComponent, error) {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var (
		out    *models.ServerComponent
		action models.HistoryAction
	)
	err = s.withServerLock(current.ServerID, func() error {
		return s.store.Transaction(ctx, func(tx *store.Store) error {
			c, err := tx.GetForServer(ctx, current.ServerID, id)
			if err != nil {
				return err
			}

			var d diffSet
			action, d, err = edit(c)
			if err != nil {
				return err
			}
			out = c
			if len(d.columns) == 0 {
				action = ""
				return nil
			}

			if d.serialChanged {
				if err := tx.EnsureSerialsUnique(ctx, c, store.ConflictFilter{}); err != nil {
					return err
				}
			}

			now := s.now()
			c.LastUpdatedAt = &now
			if err := tx.Update(ctx, c, append(d.columns, "last_updated_at")...); err != nil {
				return err
			}
			return s.record(ctx, tx, action, c, d.old, d.new, utils.StringPtr(d.reason), userID)
		})
	})
	if err != nil {
		return nil, err
	}

	if action != "" {
		s.changed(ctx, out, action, userID)
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, tx *store.Store, action models.HistoryAction, c *models.ServerComponent, oldValue, newValue models.Metadata, reason *string, userID *uint) error {
	return tx.AppendHistory(ctx, &models.ComponentHistory{
		Action:      action,
		ComponentID: c.ID,
		ServerID:    c.ServerID,
		UserID:      userID,
		OldValue:    oldValue,
		NewValue:    newValue,
		Reason:      reason,
		PerformedAt: s.now(),
	})
}

// changed reports a committed manual change.
func (s *Service) changed(ctx context.Context, c *models.ServerComponent, action models.HistoryAction, userID *uint) {
	metrics.HistoryEntriesCounter.WithLabelValues(string(action)).Inc()

	err := s.publisher.Publish(ctx, events.Event{
		Type:     events.TypeChanged,
		ServerID: c.ServerID,
		Action:   string(action),
		UserID:   userID,
		Payload:  map[string]any{"componentId": c.ID},
	})
	if err != nil {
		s.logger.Warn("Failed to publish component event", zap.Error(err))
	}
}

// CheckSerial probes the fleet for components already holding a serial.
func (s *Service) CheckSerial(ctx context.Context, in CheckSerialInput) (*CheckSerialResult, error) {
	owner, value, err := s.store.FindSerialConflict(ctx,
		[]string{in.SerialNumber, in.SerialNumberYadro},
		store.ConflictFilter{ExcludeComponentID: in.ExcludeComponentID})
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return &CheckSerialResult{Unique: true}, nil
	}

	conflict := &SerialConflict{
		ID:                owner.ID,
		Name:              owner.Name,
		ComponentType:     owner.ComponentType,
		SerialNumber:      owner.SerialNumber,
		SerialNumberYadro: owner.SerialNumberYadro,
		Serial:            value,
	}
	owns := &SerialOwner{ComponentID: owner.ID, ServerID: owner.ServerID}
	if srv, err := s.store.GetServer(ctx, owner.ServerID); err == nil {
		info := serverInfo(srv)
		conflict.Server = &info
		owns.ServerSerial = deref(srv.APKSerialNumber)
	}
	return &CheckSerialResult{Unique: false, ConflictsWith: owns, Conflict: conflict}, nil
}

// Search finds components across the fleet. At least one criterion is required.
func (s *Service) Search(ctx context.Context, f store.SearchFilter) ([]models.ServerComponent, error) {
	if strings.TrimSpace(f.Query) == "" && f.Type == "" && f.Status == "" && f.ServerID == 0 {
		return nil, fmt.Errorf("%w: at least one search criterion is required", ErrValidation)
	}
	return s.store.Search(ctx, f)
}

// Scan looks a scanned serial up on both serial columns.
func (s *Service) Scan(ctx context.Context, serial string) (*ScanResult, error) {
	if strings.TrimSpace(serial) == "" {
		return nil, fmt.Errorf("%w: serial is required", ErrValidation)
	}
	exact, suggestions, err := s.store.FindBySerial(ctx, serial)
	if err != nil {
		return nil, err
	}
	return &ScanResult{Found: exact != nil, Component: exact, Suggestions: suggestions}, nil
}

// UpdateBMCAddress sets or clears the BMC address of a server.
func (s *Service) UpdateBMCAddress(ctx context.Context, serverID uint, addr string) (*models.Server, error) {
	if err := s.store.UpdateBMCAddress(ctx, serverID, utils.StringPtr(strings.TrimSpace(addr))); err != nil {
		return nil, err
	}
	return s.store.GetServer(ctx, serverID)
}

// CheckBMC tests connectivity to the BMC of a server. Concurrent checks of
// the same server share one probe.
func (s *Service) CheckBMC(ctx context.Context, serverID uint) (*bmc.CheckResult, error) {
	srv, err := s.store.GetServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	target := bmc.Target{
		ServerID: srv.ID,
		Address:  utils.FirstNonEmpty(deref(srv.BMCAddress), deref(srv.IPAddress)),
	}

	v, err, _ := s.checks.Do(strconv.FormatUint(uint64(serverID), 10), func() (any, error) {
		return s.client.Check(ctx, target)
	})
	if err != nil {
		return nil, err
	}
	return v.(*bmc.CheckResult), nil
}

// diffSet accumulates the columns and history values an edit touches.
type diffSet struct {
	columns       []string
	old           models.Metadata
	new           models.Metadata
	reason        string
	serialChanged bool
}

func newDiffSet() diffSet {
	return diffSet{old: models.Metadata{}, new: models.Metadata{}}
}

func (d *diffSet) touch(field, column string, oldValue, newValue any) {
	d.columns = append(d.columns, column)
	d.old[field] = oldValue
	d.new[field] = newValue
	if column == "serial_number" || column == "serial_number_yadro" {
		d.serialChanged = true
	}
}

func (d *diffSet) str(field, column string, dst *string, v string) {
	if *dst == v {
		return
	}
	d.touch(field, column, *dst, v)
	*dst = v
}

func (d *diffSet) ptr(field, column string, dst **string, v *string) {
	if v == nil {
		return
	}
	next := clean(v)
	if deref(*dst) == deref(next) {
		return
	}
	d.touch(field, column, *dst, next)
	*dst = next
}

func (d *diffSet) num(field, column string, dst **int64, v *int64) {
	if v == nil || (*dst != nil && **dst == *v) {
		return
	}
	d.touch(field, column, *dst, *v)
	n := *v
	*dst = &n
}

func (d *diffSet) metadata(c *models.ServerComponent, raw json.RawMessage) error {
	if string(raw) == "null" {
		if c.Metadata != nil {
			d.touch("metadata", "metadata", c.Metadata, nil)
			c.Metadata = nil
		}
		return nil
	}

	var patch models.Metadata
	if err := json.Unmarshal(raw, &patch); err != nil {
		return fmt.Errorf("%w: metadata must be an object", ErrValidation)
	}
	if len(patch) == 0 {
		return nil
	}

	merged := models.Metadata{}
	for k, v := range c.Metadata {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	d.touch("metadata", "metadata", c.Metadata, merged)
	c.Metadata = merged
	return nil
}

func clean(s *string) *string {
	if s == nil {
		return nil
	}
	return utils.StringPtr(strings.TrimSpace(*s))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
