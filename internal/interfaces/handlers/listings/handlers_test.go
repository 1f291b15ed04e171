package listings

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http/httptest"
	"testing"

	listsvc "farmgate-backend/internal/application/listings"
	"farmgate-backend/internal/domain"
	"farmgate-backend/internal/geo"
	"farmgate-backend/internal/infrastructure/database"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSellerID = "00000000-0000-0000-0000-000000000001"

func setupListingsTest(t *testing.T) (*Handlers, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	resolver := geo.NewTableResolver(geo.Region{
		Country: "Kenya", Region: "Rift Valley",
		MinLat: -5, MaxLat: 5, MinLng: 30, MaxLng: 42,
	})
	svc := &listsvc.Service{
		DB:     db,
		Fuzzer: geo.NewFuzzer(geo.DefaultConfig(), resolver, rand.New(rand.NewSource(1))),
	}
	return &Handlers{Service: svc}, db
}

func sessionApp(userID string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user", map[string]interface{}{
			"user_id": userID,
			"role":    "seller",
		})
		return c.Next()
	})
	return app
}

func createBody() map[string]interface{} {
	return map[string]interface{}{
		"livestock_type": "cattle",
		"species":        "Boran",
		"quantity":       100,
		"min_price":      10,
		"max_price":      15,
		"currency":       "KES",
		"latitude":       0.5,
		"longitude":      36.0,
		"fuzzing_level":  "medium",
	}
}

func TestCreateListing_Success(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := sessionApp(testSellerID)
	app.Post("/create-listing", h.CreateListing)

	body, _ := json.Marshal(createBody())
	req := httptest.NewRequest("POST", "/create-listing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "success", result["status"])
	data := result["data"].(map[string]interface{})
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, testSellerID, data["seller_id"])
	// Precise coordinates never leave the server.
	_, exposed := data["precise_lat"]
	assert.False(t, exposed)
	assert.NotNil(t, data["public_lat"])
}

func TestCreateListing_NoSession(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := fiber.New()
	app.Post("/create-listing", h.CreateListing)

	body, _ := json.Marshal(createBody())
	req := httptest.NewRequest("POST", "/create-listing", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestCreateListing_InvalidPayload(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := sessionApp(testSellerID)
	app.Post("/create-listing", h.CreateListing)

	body := createBody()
	body["quantity"] = 0
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/create-listing", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestCreateListing_BadCoordinates(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := sessionApp(testSellerID)
	app.Post("/create-listing", h.CreateListing)

	body := createBody()
	body["latitude"] = 123.0
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest("POST", "/create-listing", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSearch_EmptyDB(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := fiber.New()
	app.Get("/search", h.Search)

	req := httptest.NewRequest("GET", "/search", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, "success", result["status"])
	meta := result["metadata"].(map[string]interface{})
	assert.Equal(t, float64(0), meta["total"])
}

func TestSearch_FilterAndPagination(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := sessionApp(testSellerID)
	app.Post("/create-listing", h.CreateListing)
	app.Get("/search", h.Search)

	for _, lt := range []string{"cattle", "cattle", "poultry"} {
		body := createBody()
		body["livestock_type"] = lt
		raw, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", "/create-listing", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, 201, resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/search?livestock_type=cattle&page=1&page_size=1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var result map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&result)
	meta := result["metadata"].(map[string]interface{})
	assert.Equal(t, float64(2), meta["total"])
	assert.Len(t, result["data"].([]interface{}), 1)
}

func TestSearch_UnknownLivestockType(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := fiber.New()
	app.Get("/search", h.Search)

	req := httptest.NewRequest("GET", "/search?livestock_type=dragons", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetListing_InvalidUUID(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := fiber.New()
	app.Get("/get-listing/:listing_id", h.GetListing)

	req := httptest.NewRequest("GET", "/get-listing/not-a-uuid", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestGetListing_NotFound(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := fiber.New()
	app.Get("/get-listing/:listing_id", h.GetListing)

	req := httptest.NewRequest("GET", "/get-listing/"+uuid.NewString(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestChangeStatus_InvalidTransition(t *testing.T) {
	h, db := setupListingsTest(t)
	app := sessionApp(testSellerID)
	app.Patch("/change-status", h.ChangeStatus)

	listing := &domain.Listing{
		SellerID:      uuid.MustParse(testSellerID),
		LivestockType: domain.LivestockCattle,
		Quantity:      10,
		MinPrice:      5,
		MaxPrice:      8,
		Currency:      "KES",
		FuzzingLevel:  domain.FuzzLow,
		Status:        domain.StatusSold,
	}
	require.NoError(t, db.Create(listing).Error)

	body, _ := json.Marshal(map[string]string{
		"listing_id": listing.ListingID.String(),
		"status":     "active",
	})
	req := httptest.NewRequest("PATCH", "/change-status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 409, resp.StatusCode)
}

func TestChangeStatus_WrongSeller(t *testing.T) {
	h, db := setupListingsTest(t)
	app := sessionApp(uuid.NewString())
	app.Patch("/change-status", h.ChangeStatus)

	listing := &domain.Listing{
		SellerID:      uuid.MustParse(testSellerID),
		LivestockType: domain.LivestockGoats,
		Quantity:      10,
		MinPrice:      5,
		MaxPrice:      8,
		Currency:      "KES",
		FuzzingLevel:  domain.FuzzLow,
		Status:        domain.StatusActive,
	}
	require.NoError(t, db.Create(listing).Error)

	body, _ := json.Marshal(map[string]string{
		"listing_id": listing.ListingID.String(),
		"status":     "paused",
	})
	req := httptest.NewRequest("PATCH", "/change-status", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestDeleteListing_NotFound(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := sessionApp(testSellerID)
	app.Delete("/delete-listing/:listing_id", h.DeleteListing)

	req := httptest.NewRequest("DELETE", "/delete-listing/"+uuid.NewString(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestPrefillFromBatch_NotFound(t *testing.T) {
	h, _ := setupListingsTest(t)
	app := fiber.New()
	app.Get("/prefill-from-batch/:batch_id", h.PrefillFromBatch)

	req := httptest.NewRequest("GET", "/prefill-from-batch/"+uuid.NewString(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}
