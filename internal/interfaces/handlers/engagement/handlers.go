package engagement

import (
	"errors"

	engsvc "farmgate-backend/internal/application/engagement"
	"farmgate-backend/internal/domain"
	"farmgate-backend/internal/middleware"
	"farmgate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *engsvc.Service
}

// ViewRequest body for POST record-view.
type ViewRequest struct {
	ListingID string `json:"listing_id"`
}

// RecordView POST /api/v1/engagement/record-view — counts at most one view
// per viewer per listing per UTC day. A duplicate still returns 200; the
// "counted" flag tells the UI whether this view moved the counter.
func (h *Handlers) RecordView(c *fiber.Ctx) error {
	viewerID, err := middleware.SessionUserID(c)
	if err != nil {
		return response.Error(c, "Unauthorized", 401, nil)
	}
	var req ViewRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id", 400, nil)
	}

	counted, err := h.Service.RecordListingView(c.Context(), listingID, viewerID, c.IP())
	if err != nil {
		if errors.Is(err, engsvc.ErrListingNotFound) {
			return response.Error(c, "Listing not found", 404, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "View processed", fiber.Map{"counted": counted}, nil)
}

// ContactRequestBody for POST contact-seller.
type ContactRequestBody struct {
	ListingID     string `json:"listing_id"`
	Message       string `json:"message"`
	ContactMethod string `json:"contact_method"`
}

// ContactSeller POST /api/v1/engagement/contact-seller — idempotent per
// (listing, buyer): a repeat call returns the original request id.
func (h *Handlers) ContactSeller(c *fiber.Ctx) error {
	buyerID, err := middleware.SessionUserID(c)
	if err != nil {
		return response.Error(c, "Unauthorized", 401, nil)
	}
	var req ContactRequestBody
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return response.Error(c, "Invalid listing_id", 400, nil)
	}
	method := domain.ContactPreference(req.ContactMethod)
	if method != "" && !domain.IsValidContactPreference(method) {
		return response.Error(c, "Unknown contact_method", 400, nil)
	}

	requestID, created, err := h.Service.CreateContactRequest(c.Context(), engsvc.ContactRequestInput{
		ListingID:     listingID,
		BuyerID:       buyerID,
		Message:       req.Message,
		ContactMethod: method,
	})
	if err != nil {
		if errors.Is(err, engsvc.ErrListingNotFound) {
			return response.Error(c, "Listing not found", 404, nil)
		}
		return response.Error(c, err.Error(), 500, nil)
	}
	data := fiber.Map{"request_id": requestID, "created": created}
	if created {
		return response.SuccessCreated(c, "Contact request created", data, nil)
	}
	return response.Success(c, "Contact request already exists", data, nil)
}

// State GET /api/v1/engagement/state/:listing_id — the buyer's engagement
// standing for UI rendering.
func (h *Handlers) State(c *fiber.Ctx) error {
	buyerID, err := middleware.SessionUserID(c)
	if err != nil {
		return response.Error(c, "Unauthorized", 401, nil)
	}
	listingID, err := uuid.Parse(c.Params("listing_id"))
	if err != nil {
		return response.Error(c, "Invalid listing_id", 400, nil)
	}
	state, err := h.Service.EngagementState(c.Context(), listingID, buyerID)
	if err != nil {
		return response.Error(c, err.Error(), 500, nil)
	}
	return response.Success(c, "Engagement state fetched", state, nil)
}
