package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"beryll-inventory/feature/components/models"

	"gorm.io/gorm"
)

// Store is the gorm repository for servers, components and their history.
// A Store obtained inside Transaction runs every call on that transaction.
type Store struct {
	db *gorm.DB
}

// New wraps db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the inventory tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Server{}, &models.ServerComponent{}, &models.ComponentHistory{})
}

// Transaction runs fn inside one database transaction. Returning an error rolls back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// GetServer loads a server.
func (s *Store) GetServer(ctx context.Context, id uint) (*models.Server, error) {
	var srv models.Server
	if err := s.conn(ctx).First(&srv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrServerNotFound, id)
		}
		return nil, fmt.Errorf("load server %d: %w", id, err)
	}
	return &srv, nil
}

// TouchServerFetch stamps the last successful component sync.
func (s *Store) TouchServerFetch(ctx context.Context, serverID uint, at time.Time) error {
	err := s.conn(ctx).Model(&models.Server{}).Where("id = ?", serverID).
		Update("last_components_fetch_at", at).Error
	if err != nil {
		return fmt.Errorf("stamp server %d: %w", serverID, err)
	}
	return nil
}

// UpdateBMCAddress sets (or clears, when addr is nil) the BMC address of a server.
func (s *Store) UpdateBMCAddress(ctx context.Context, serverID uint, addr *string) error {
	if _, err := s.GetServer(ctx, serverID); err != nil {
		return err
	}
	err := s.conn(ctx).Model(&models.Server{}).Where("id = ?", serverID).
		Update("bmc_address", addr).Error
	if err != nil {
		return fmt.Errorf("update bmc address of server %d: %w", serverID, err)
	}
	return nil
}

// ListByServer returns the components of a server ordered by type, slot and id.
func (s *Store) ListByServer(ctx context.Context, serverID uint) ([]models.ServerComponent, error) {
	var out []models.ServerComponent
	err := s.conn(ctx).Where("server_id = ?", serverID).
		Order("component_type").Order("slot").Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list components of server %d: %w", serverID, err)
	}
	return out, nil
}

// CountFlagged returns how many components of a server await review.
func (s *Store) CountFlagged(ctx context.Context, serverID uint) (int64, error) {
	var n int64
	err := s.conn(ctx).Model(&models.ServerComponent{}).
		Where("server_id = ? AND bmc_discrepancy = ?", serverID, true).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count flagged components of server %d: %w", serverID, err)
	}
	return n, nil
}

// Get loads a component by id.
func (s *Store) Get(ctx context.Context, id uint) (*models.ServerComponent, error) {
	var c models.ServerComponent
	if err := s.conn(ctx).First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrComponentNotFound, id)
		}
		return nil, fmt.Errorf("load component %d: %w", id, err)
	}
	return &c, nil
}

// GetForServer loads a component and checks it belongs to serverID.
func (s *Store) GetForServer(ctx context.Context, serverID, id uint) (*models.ServerComponent, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ServerID != serverID {
		return nil, fmt.Errorf("%w: %d on server %d", ErrComponentNotFound, id, serverID)
	}
	return c, nil
}

// Create inserts c. Empty serials are stored as NULL.
func (s *Store) Create(ctx context.Context, c *models.ServerComponent) error {
	normalizeSerials(c)
	if err := s.conn(ctx).Create(c).Error; err != nil {
		return s.translate(ctx, c, fmt.Errorf("create component: %w", err))
	}
	return nil
}

// Update writes the named columns of c.
func (s *Store) Update(ctx context.Context, c *models.ServerComponent, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	normalizeSerials(c)
	if err := s.conn(ctx).Model(c).Select(columns).Updates(c).Error; err != nil {
		return s.translate(ctx, c, fmt.Errorf("update component %d: %w", c.ID, err))
	}
	return nil
}

// ClearSerials nulls both serial columns of a component.
func (s *Store) ClearSerials(ctx context.Context, id uint) error {
	err := s.conn(ctx).Model(&models.ServerComponent{}).Where("id = ?", id).
		Updates(map[string]any{"serial_number": nil, "serial_number_yadro": nil}).Error
	if err != nil {
		return fmt.Errorf("clear serials of component %d: %w", id, err)
	}
	return nil
}

// Delete removes a component.
func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.conn(ctx).Delete(&models.ServerComponent{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete component %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrComponentNotFound, id)
	}
	return nil
}

// SetDiscrepancy flags a component for review.
func (s *Store) SetDiscrepancy(ctx context.Context, id uint, reason models.DiscrepancyReason) error {
	err := s.conn(ctx).Model(&models.ServerComponent{}).Where("id = ?", id).
		Updates(map[string]any{"bmc_discrepancy": true, "bmc_discrepancy_reason": reason}).Error
	if err != nil {
		return fmt.Errorf("flag component %d: %w", id, err)
	}
	return nil
}

// ClearDiscrepancy removes the review flag of a component.
func (s *Store) ClearDiscrepancy(ctx context.Context, id uint) error {
	err := s.conn(ctx).Model(&models.ServerComponent{}).Where("id = ?", id).
		Updates(map[string]any{"bmc_discrepancy": false, "bmc_discrepancy_reason": nil}).Error
	if err != nil {
		return fmt.Errorf("clear flag of component %d: %w", id, err)
	}
	return nil
}

// ConflictFilter narrows a serial conflict lookup.
type ConflictFilter struct {
	// ExcludeComponentID skips the component being written.
	ExcludeComponentID uint
	// ExcludeServerID skips owners on this server.
	ExcludeServerID uint
}

// FindSerialConflict returns the first component whose serialNumber or
// serialNumberYadro equals any of values, together with the matching value.
// It returns nil when every value is free.
func (s *Store) FindSerialConflict(ctx context.Context, values []string, f ConflictFilter) (*models.ServerComponent, string, error) {
	values = cleanValues(values)
	if len(values) == 0 {
		return nil, "", nil
	}

	q := s.conn(ctx).Where(
		s.db.Where("serial_number IN ?", values).Or("serial_number_yadro IN ?", values),
	)
	if f.ExcludeComponentID != 0 {
		q = q.Where("id <> ?", f.ExcludeComponentID)
	}
	if f.ExcludeServerID != 0 {
		q = q.Where("server_id <> ?", f.ExcludeServerID)
	}

	var owners []models.ServerComponent
	if err := q.Order("id").Limit(1).Find(&owners).Error; err != nil {
		return nil, "", fmt.Errorf("serial lookup: %w", err)
	}
	if len(owners) == 0 {
		return nil, "", nil
	}

	owner := owners[0]
	for _, v := range values {
		if (owner.SerialNumber != nil && *owner.SerialNumber == v) ||
			(owner.SerialNumberYadro != nil && *owner.SerialNumberYadro == v) {
			return &owner, v, nil
		}
	}
	return &owner, values[0], nil
}

// EnsureSerialsUnique returns a *SerialConflictError when another component
// owns one of c's serials.
func (s *Store) EnsureSerialsUnique(ctx context.Context, c *models.ServerComponent, f ConflictFilter) error {
	if f.ExcludeComponentID == 0 {
		f.ExcludeComponentID = c.ID
	}
	owner, value, err := s.FindSerialConflict(ctx, c.Serials(), f)
	if err != nil {
		return err
	}
	if owner != nil {
		return &SerialConflictError{Serial: value, ComponentID: owner.ID, ServerID: owner.ServerID}
	}
	return nil
}

// translate turns unique index violations into a *SerialConflictError naming the owner.
func (s *Store) translate(ctx context.Context, c *models.ServerComponent, err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	conflict := &SerialConflictError{}
	if serials := c.Serials(); len(serials) > 0 {
		conflict.Serial = serials[0]
	}
	if owner, value, lookupErr := s.FindSerialConflict(ctx, c.Serials(), ConflictFilter{ExcludeComponentID: c.ID}); lookupErr == nil && owner != nil {
		conflict.Serial = value
		conflict.ComponentID = owner.ID
		conflict.ServerID = owner.ServerID
	}
	return conflict
}

// SearchFilter selects components fleet-wide.
type SearchFilter struct {
	Query    string
	Type     models.ComponentType
	Status   models.ComponentStatus
	ServerID uint
	Limit    int
}

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

// Search matches Query as a substring of the serials, name, manufacturer, model
// and part number.
func (s *Store) Search(ctx context.Context, f SearchFilter) ([]models.ServerComponent, error) {
	q := s.conn(ctx).Model(&models.ServerComponent{})

	if term := strings.TrimSpace(f.Query); term != "" {
		like := "%" + term + "%"
		q = q.Where(
			s.db.Where("serial_number LIKE ?", like).
				Or("serial_number_yadro LIKE ?", like).
				Or("name LIKE ?", like).
				Or("manufacturer LIKE ?", like).
				Or("model LIKE ?", like).
				Or("part_number LIKE ?", like),
		)
	}
	if f.Type != "" {
		q = q.Where("component_type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ServerID != 0 {
		q = q.Where("server_id = ?", f.ServerID)
	}

	var out []models.ServerComponent
	if err := q.Order("id").Limit(clampLimit(f.Limit, defaultSearchLimit, maxSearchLimit)).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("search components: %w", err)
	}
	return out, nil
}

// FindBySerial looks a serial up exactly on both columns. When nothing matches
// exactly it returns up to ten substring matches as suggestions.
func (s *Store) FindBySerial(ctx context.Context, serial string) (*models.ServerComponent, []models.ServerComponent, error) {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return nil, nil, nil
	}

	var exact []models.ServerComponent
	err := s.conn(ctx).Where("serial_number = ? OR serial_number_yadro = ?", serial, serial).
		Order("id").Limit(1).Find(&exact).Error
	if err != nil {
		return nil, nil, fmt.Errorf("scan serial: %w", err)
	}
	if len(exact) > 0 {
		return &exact[0], nil, nil
	}

	var suggestions []models.ServerComponent
	like := "%" + serial + "%"
	err = s.conn(ctx).Where("serial_number LIKE ? OR serial_number_yadro LIKE ?", like, like).
		Order("id").Limit(10).Find(&suggestions).Error
	if err != nil {
		return nil, nil, fmt.Errorf("scan serial: %w", err)
	}
	return nil, suggestions, nil
}

func normalizeSerials(c *models.ServerComponent) {
	c.SerialNumber = trimmedOrNil(c.SerialNumber)
	c.SerialNumberYadro = trimmedOrNil(c.SerialNumberYadro)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func cleanValues(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func clampLimit(limit, def, max int) int {
	switch {
	case limit <= 0:
		return def
	case limit > max:
		return max
	default:
		return limit
	}
}
