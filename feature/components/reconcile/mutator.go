package reconcile

import (
	"context"
	"strings"
	"time"

	"beryll-inventory/core/bmc"
	"beryll-inventory/core/reconcile"
	"beryll-inventory/core/utils"
	"beryll-inventory/feature/components/models"
	"beryll-inventory/feature/components/store"
)

// mutator applies a plan on one server inside a transaction and writes one
// history entry per applied insert, update or delete.
type mutator struct {
	tx       *store.Store
	serverID uint
	userID   *uint
	now      time.Time

	added   []models.ServerComponent
	history map[models.HistoryAction]int
}

var (
	_ reconcile.Mutator[change]        = (*mutator)(nil)
	_ reconcile.UpdatePreparer[change] = (*mutator)(nil)
)

func newMutator(tx *store.Store, serverID uint, userID *uint, now time.Time) *mutator {
	return &mutator{
		tx:       tx,
		serverID: serverID,
		userID:   userID,
		now:      now,
		history:  make(map[models.HistoryAction]int),
	}
}

func (m *mutator) Delete(ctx context.Context, a reconcile.Action[change]) error {
	c := a.Item.Current
	if err := m.tx.Delete(ctx, c.ID); err != nil {
		return err
	}
	return m.record(ctx, models.ActionRemoved, c, c.Snapshot(), nil, a.Reason)
}

// PrepareUpdates nulls the serials of rows whose serials are about to change,
// so serials swapped between rows of this server never collide mid-run.
func (m *mutator) PrepareUpdates(ctx context.Context, updates []reconcile.Action[change]) error {
	for _, a := range updates {
		if !reconcile.Touches(a.Item.Diffs, FieldSerialNumber, FieldSerialNumberYadro) {
			continue
		}
		if err := m.tx.ClearSerials(ctx, a.Item.Current.ID); err != nil {
			return err
		}
	}
	return nil
}

func (m *mutator) Update(ctx context.Context, a reconcile.Action[change]) error {
	c := *a.Item.Current
	live := a.Item.Live

	oldValue := models.Metadata{}
	newValue := models.Metadata{}
	columns := []string{"last_updated_at"}
	serialChanged := false

	for _, d := range a.Item.Diffs {
		oldValue[d.Field] = d.DB
		newValue[d.Field] = d.BMC

		switch d.Field {
		case FieldSerialNumber:
			c.SerialNumber = utils.StringPtr(live.SerialNumber)
			serialChanged = true
		case FieldSerialNumberYadro:
			c.SerialNumberYadro = utils.StringPtr(live.SerialNumberYadro)
			serialChanged = true
		case FieldManufacturer:
			c.Manufacturer = utils.StringPtr(live.Manufacturer)
			columns = append(columns, "manufacturer")
		case FieldModel:
			c.Model = utils.StringPtr(live.Model)
			columns = append(columns, "model")
		case FieldPartNumber:
			c.PartNumber = utils.StringPtr(live.PartNumber)
			columns = append(columns, "part_number")
		case FieldFirmwareVersion:
			c.FirmwareVersion = utils.StringPtr(live.FirmwareVersion)
			columns = append(columns, "firmware_version")
		case FieldCapacity:
			c.Capacity = utils.Int64Ptr(live.Capacity)
			columns = append(columns, "capacity")
		case FieldSpeed:
			c.Speed = utils.Int64Ptr(live.Speed)
			columns = append(columns, "speed")
		}
	}

	action := models.ActionUpdated
	if serialChanged {
		// both columns were cleared by PrepareUpdates
		columns = append(columns, "serial_number", "serial_number_yadro")
		action = models.ActionSerialChanged
		if err := m.tx.EnsureSerialsUnique(ctx, &c, store.ConflictFilter{ExcludeServerID: m.serverID}); err != nil {
			return err
		}
	}

	now := m.now
	c.LastUpdatedAt = &now
	if err := m.tx.Update(ctx, &c, columns...); err != nil {
		return err
	}

	return m.record(ctx, action, &c, oldValue, newValue, a.Reason)
}

func (m *mutator) Insert(ctx context.Context, a reconcile.Action[change]) error {
	c := componentFromLive(m.serverID, a.Item.Live, m.now)

	if err := m.tx.EnsureSerialsUnique(ctx, c, store.ConflictFilter{ExcludeServerID: m.serverID}); err != nil {
		return err
	}
	if err := m.tx.Create(ctx, c); err != nil {
		return err
	}

	m.added = append(m.added, *c)
	return m.record(ctx, models.ActionAdded, c, nil, c.Snapshot(), a.Reason)
}

func (m *mutator) Flag(ctx context.Context, a reconcile.Action[change]) error {
	return m.tx.SetDiscrepancy(ctx, a.Item.Current.ID, a.Item.Flag)
}

func (m *mutator) ClearFlag(ctx context.Context, a reconcile.Action[change]) error {
	return m.tx.ClearDiscrepancy(ctx, a.Item.Current.ID)
}

func (m *mutator) record(ctx context.Context, action models.HistoryAction, c *models.ServerComponent, oldValue, newValue models.Metadata, reason string) error {
	entry := &models.ComponentHistory{
		Action:      action,
		ComponentID: c.ID,
		ServerID:    m.serverID,
		UserID:      m.userID,
		OldValue:    oldValue,
		NewValue:    newValue,
		Reason:      utils.StringPtr(reason),
		PerformedAt: m.now,
	}
	if err := m.tx.AppendHistory(ctx, entry); err != nil {
		return err
	}
	m.history[action]++
	return nil
}

// componentFromLive builds a BMC-origin component from a reported one.
func componentFromLive(serverID uint, l *bmc.Component, now time.Time) *models.ServerComponent {
	c := &models.ServerComponent{
		ServerID:          serverID,
		ComponentType:     liveType(l),
		Manufacturer:      utils.StringPtr(l.Manufacturer),
		Model:             utils.StringPtr(l.Model),
		SerialNumber:      utils.StringPtr(l.SerialNumber),
		SerialNumberYadro: utils.StringPtr(l.SerialNumberYadro),
		PartNumber:        utils.StringPtr(l.PartNumber),
		Slot:              utils.StringPtr(l.Slot),
		Status:            models.StatusUnknown,
		Capacity:          utils.Int64Ptr(l.Capacity),
		Speed:             utils.Int64Ptr(l.Speed),
		FirmwareVersion:   utils.StringPtr(l.FirmwareVersion),
		OriginSource:      models.OriginBMC,
		LastUpdatedAt:     &now,
	}

	if st, ok := models.ParseComponentStatus(l.Status); ok {
		c.Status = st
	}

	c.Name = strings.TrimSpace(l.Name)
	if c.Name == "" {
		c.Name = models.DisplayName(c.ComponentType, c.Manufacturer, c.Model)
	}

	if len(l.Metadata) > 0 || l.Health != "" {
		c.Metadata = models.Metadata{}
		for k, v := range l.Metadata {
			c.Metadata[k] = v
		}
		if l.Health != "" {
			c.Metadata["health"] = l.Health
		}
	}

	return c
}
