package components

import (
	"beryll-inventory/core/bmc"
	"beryll-inventory/core/events"
	"beryll-inventory/feature/components/reconcile"
	"beryll-inventory/feature/components/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the components feature around an existing engine so the
// CLI and the HTTP API share the same per-server locks.
func NewFeature(db *gorm.DB, engine *reconcile.Engine, client bmc.Client, publisher events.Publisher, logger *zap.Logger) *Feature {
	svc := NewService(store.New(db), engine, client, publisher, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "components"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
