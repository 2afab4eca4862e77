package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"beryll-inventory/core/database"
	"beryll-inventory/core/storage"
	"beryll-inventory/core/storage/mocks"
	"beryll-inventory/feature/components/store"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, client storage.Client) *fiber.App {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	feature := NewFeature(client, storage.Config{Bucket: "snaps"}, zap.NewNop(), db)
	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app
}

func decode(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleSchemaCheck(t *testing.T) {
	app := setupTestApp(t, nil)

	code, body := decode(t, app, "/integrity/schema")
	assert.Equal(t, 200, code)
	assert.Equal(t, true, body["matched"])
}

func TestHandleStorageCheck(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "snaps").Return(false, nil).Times(2)
	client.On("MakeBucket", mock.Anything, "snaps", minio.MakeBucketOptions{}).Return(nil)
	client.On("BucketExists", mock.Anything, "snaps").Return(true, nil)
	client.On("ListObjects", mock.Anything, "snaps", mock.Anything).Return(nil)
	app := setupTestApp(t, client)

	code, body := decode(t, app, "/integrity/storage?fix=true")
	assert.Equal(t, 200, code)
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, true, body["created"])
}

func TestHandleStorageCheck_Disabled(t *testing.T) {
	app := setupTestApp(t, nil)

	code, _ := decode(t, app, "/integrity/storage")
	assert.Equal(t, fiber.StatusServiceUnavailable, code)

	code, body := decode(t, app, "/integrity")
	assert.Equal(t, 200, code)
	assert.Contains(t, body, "schema")
	assert.Equal(t, "error", body["storage"].(map[string]any)["status"])
}
