package listings

import (
	"errors"
	"time"

	listsvc "farmgate-backend/internal/application/listings"
	"farmgate-backend/internal/domain"
	"farmgate-backend/internal/geo"
	"farmgate-backend/internal/middleware"
	"farmgate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *listsvc.Service
}

// CreateListingRequest is the seller's listing payload. Coordinates are the
// precise location; only the fuzzed public location comes back.
type CreateListingRequest struct {
	LivestockType     string   `json:"livestock_type"`
	Species           string   `json:"species"`
	Quantity          int      `json:"quantity"`
	MinPrice          float64  `json:"min_price"`
	MaxPrice          float64  `json:"max_price"`
	Currency          string   `json:"currency"`
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	FuzzingLevel      string   `json:"fuzzing_level"`
	PeriodDays        int      `json:"period_days"`
	Description       string   `json:"description"`
	PhotoURLs         []string `json:"photo_urls"`
	ContactPreference string   `json:"contact_preference"`
	BatchID           string   `json:"batch_id"`
}

// CreateListing POST /api/v1/listings/create-listing
func (h *Handlers) CreateListing(c *fiber.Ctx) error {
	sellerID, err := middleware.SessionUserID(c)
	if err != nil {
		return response.Error(c, "Unauthorized", 401, nil)
	}
	var req CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	var batchID *uuid.UUID
	if req.BatchID != "" {
		id, err := uuid.Parse(req.BatchID)
		if err != nil {
			return response.Error(c, "Invalid batch_id", 400, nil)
		}
		batchID = &id
	}

	listing, err := h.Service.CreateListing(c.Context(), listsvc.CreateListingInput{
		SellerID:          sellerID,
		LivestockType:     domain.LivestockType(req.LivestockType),
		Species:           req.Species,
		Quantity:          req.Quantity,
		MinPrice:          req.MinPrice,
		MaxPrice:          req.MaxPrice,
		Currency:          req.Currency,
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		FuzzingLevel:      domain.FuzzingLevel(req.FuzzingLevel),
		PeriodDays:        req.PeriodDays,
		Description:       req.Description,
		PhotoURLs:         req.PhotoURLs,
		ContactPreference: domain.ContactPreference(req.ContactPreference),
		BatchID:           batchID,
	})
	if err != nil {
		switch {
		case errors.Is(err, listsvc.ErrConstraintViolation),
			errors.Is(err, geo.ErrInvalidCoordinates),
			errors.Is(err, geo.ErrInvalidPrivacyLevel):
			return response.Error(c, err.Error(), 400, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.SuccessCreated(c, "Listing created successfully", listing, nil)
}

// Search GET /api/v1/listings/search — paginated filtered listings.
func (h *Handlers) Search(c *fiber.Ctx) error {
	criteria := domain.FilterCriteria{
		Region:   c.Query("region"),
		Location: c.Query("location"),
	}
	if t := c.Query("livestock_type"); t != "" {
		lt := domain.LivestockType(t)
		if !domain.IsValidLivestockType(lt) {
			return response.Error(c, "Unknown livestock_type", 400, nil)
		}
		criteria.LivestockType = &lt
	}
	if v := c.QueryFloat("min_price", -1); v >= 0 {
		criteria.MinPrice = &v
	}
	if v := c.QueryFloat("max_price", -1); v >= 0 {
		criteria.MaxPrice = &v
	}

	page, err := h.Service.GetListings(c.Context(), criteria, c.QueryInt("page", 1), c.QueryInt("page_size", 20))
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Listings fetched successfully", page.Data, fiber.Map{
		"total":     page.Total,
		"page":      page.Page,
		"page_size": page.PageSize,
	})
}

// GetListing GET /api/v1/listings/get-listing/:listing_id
func (h *Handlers) GetListing(c *fiber.Ctx) error {
	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id", 400, nil)
	}
	listing, err := h.Service.GetListingByID(c.Context(), listingID)
	if err != nil {
		if errors.Is(err, listsvc.ErrListingNotFound) {
			return response.Error(c, "Listing not found", 404, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Listing fetched successfully", listing, nil)
}

// GetSellerListings GET /api/v1/listings/get-seller-listings
func (h *Handlers) GetSellerListings(c *fiber.Ctx) error {
	sellerID, err := middleware.SessionUserID(c)
	if err != nil {
		return response.Error(c, "Unauthorized", 401, nil)
	}
	listings, err := h.Service.GetSellerListings(c.Context(), sellerID)
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Seller listings fetched successfully", listings, nil)
}

// ChangeStatusRequest body for PATCH change-status.
type ChangeStatusRequest struct {
	ListingID string `json:"listing_id"`
	Status    string `json:"status"`
}

// ChangeStatus PATCH /api/v1/listings/change-status
func (h *Handlers) ChangeStatus(c *fiber.Ctx) error {
	sellerID, err := middleware.SessionUserID(c)
	if err != nil {
		return response.Error(c, "Unauthorized", 401, nil)
	}
	var req ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id", 400, nil)
	}

	listing, err := h.Service.ChangeStatus(c.Context(), listingID, sellerID, domain.ListingStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, listsvc.ErrListingNotFound):
			return response.Error(c, "Listing not found", 404, nil)
		case errors.Is(err, listsvc.ErrNotOwner):
			return response.Error(c, "Unauthorized listing update", 403, nil)
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.Error(c, err.Error(), 409, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Listing status updated", listing, nil)
}

// DeleteListing DELETE /api/v1/listings/delete-listing/:listing_id — soft delete.
func (h *Handlers) DeleteListing(c *fiber.Ctx) error {
	sellerID, err := middleware.SessionUserID(c)
	if err != nil {
		return response.Error(c, "Unauthorized", 401, nil)
	}
	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id", 400, nil)
	}
	if err := h.Service.DeleteListing(c.Context(), listingID, sellerID); err != nil {
		switch {
		case errors.Is(err, listsvc.ErrListingNotFound):
			return response.Error(c, "Listing not found", 404, nil)
		case errors.Is(err, listsvc.ErrNotOwner):
			return response.Error(c, "Unauthorized listing delete", 403, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Listing deleted", nil, nil)
}

// ExpiringSoon GET /api/v1/listings/expiring-soon — the seller's listings
// inside the warning window.
func (h *Handlers) ExpiringSoon(c *fiber.Ctx) error {
	sellerID, err := middleware.SessionUserID(c)
	if err != nil {
		return response.Error(c, "Unauthorized", 401, nil)
	}
	listings, err := h.Service.SellerExpiringSoon(c.Context(), sellerID, time.Now())
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Expiring listings fetched successfully", listings, nil)
}

// PrefillFromBatch GET /api/v1/listings/prefill-from-batch/:batch_id —
// listing draft from a production batch.
func (h *Handlers) PrefillFromBatch(c *fiber.Ctx) error {
	batchID, err := uuid.Parse(c.Params("batch_id"))
	if err != nil {
		return response.Error(c, "Invalid batch_id", 400, nil)
	}
	draft, err := h.Service.PrefillFromBatch(c.Context(), batchID)
	if err != nil {
		if errors.Is(err, listsvc.ErrBatchNotFound) {
			return response.Error(c, "Batch not found", 404, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Listing draft generated", draft, nil)
}
