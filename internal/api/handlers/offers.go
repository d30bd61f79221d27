package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/api/middleware"
	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
	"github.com/agrobridge/tradeapi/internal/service"
)

// OfferResponse represents the offer payload returned to clients
type OfferResponse struct {
	ID              string                 `json:"id"`
	ProductID       string                 `json:"product_id"`
	SupplierID      string                 `json:"supplier_id"`
	PriceValue      float64                `json:"price_value"`
	Currency        domain.Currency        `json:"currency"`
	Quantity        float64                `json:"quantity"`
	Unit            domain.Unit            `json:"unit"`
	Status          domain.OfferStatus     `json:"status"`
	ExpiresAt       string                 `json:"expires_at"`
	DeliveryTerms   gin.H                  `json:"delivery_terms"`
	PaymentTerms    gin.H                  `json:"payment_terms"`
	Notes           string                 `json:"notes,omitempty"`
	ReviewedBy      *string                `json:"reviewed_by,omitempty"`
	ReviewedAt      *string                `json:"reviewed_at,omitempty"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	History         []HistoryEntryResponse `json:"history,omitempty"`
	CreatedAt       string                 `json:"created_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

func offerResponse(offer *domain.Offer) OfferResponse {
	resp := OfferResponse{
		ID:         offer.ID.String(),
		ProductID:  offer.ProductID.String(),
		SupplierID: offer.SupplierID.String(),
		PriceValue: offer.Price.Value,
		Currency:   offer.Price.Currency,
		Quantity:   offer.Quantity,
		Unit:       offer.Unit,
		Status:     offer.Status,
		ExpiresAt:  formatTime(offer.ExpiresAt),
		DeliveryTerms: gin.H{
			"region":          offer.DeliveryTerms.Region,
			"estimated_days":  offer.DeliveryTerms.EstimatedDays,
			"shipping_method": offer.DeliveryTerms.ShippingMethod,
			"incoterm":        offer.DeliveryTerms.Incoterm,
		},
		PaymentTerms: gin.H{
			"method":          offer.PaymentTerms.Method,
			"days_to_payment": offer.PaymentTerms.DaysToPayment,
		},
		Notes:           offer.Notes,
		ReviewedAt:      formatTimePtr(offer.ReviewedAt),
		RejectionReason: offer.RejectionReason,
		History:         historyResponse(offer.History),
		CreatedAt:       formatTime(offer.CreatedAt),
		UpdatedAt:       formatTime(offer.UpdatedAt),
	}
	if offer.ReviewedBy != nil {
		s := offer.ReviewedBy.String()
		resp.ReviewedBy = &s
	}
	return resp
}

// HandleCreateOffer handles POST /v1/offers
func HandleCreateOffer(offers *service.OfferService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req service.OfferTermsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		offer, err := offers.Create(c.Request.Context(), actor, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"offer": offerResponse(offer)})
	}
}

// HandleUpdateOffer handles PUT /v1/offers/:id
func HandleUpdateOffer(offers *service.OfferService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		offerID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer ID"})
			return
		}

		var req service.OfferTermsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		offer, err := offers.Update(c.Request.Context(), actor, offerID, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"offer": offerResponse(offer)})
	}
}

// HandleRequestApproval handles POST /v1/offers/:id/request-approval
func HandleRequestApproval(offers *service.OfferService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		offerID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer ID"})
			return
		}

		offer, err := offers.RequestApproval(c.Request.Context(), actor, offerID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"offer": offerResponse(offer)})
	}
}

// HandleReviewOffer handles POST /v1/offers/:id/review
func HandleReviewOffer(offers *service.OfferService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		offerID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer ID"})
			return
		}

		var req service.ReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		offer, err := offers.Review(c.Request.Context(), actor, offerID, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"offer": offerResponse(offer)})
	}
}

// HandleGetOffer handles GET /v1/offers/:id
func HandleGetOffer(offers *service.OfferService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		offerID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer ID"})
			return
		}

		offer, err := offers.Get(c.Request.Context(), actor, offerID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"offer": offerResponse(offer)})
	}
}

// HandleListOffers handles GET /v1/offers
func HandleListOffers(offers *service.OfferService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		filter := repository.OfferFilter{ListOptions: pageOptions(c, 10)}
		if statusStr := c.Query("status"); statusStr != "" {
			status := domain.OfferStatus(statusStr)
			if !status.IsValid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
			filter.Status = &status
		}
		if supplierStr := c.Query("supplier_id"); supplierStr != "" {
			supplierID, err := uuid.Parse(supplierStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier ID"})
				return
			}
			filter.SupplierID = &supplierID
		}

		list, total, err := offers.List(c.Request.Context(), actor, filter)
		if err != nil {
			logger.Error("Failed to list offers", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]OfferResponse, len(list))
		for i, offer := range list {
			responses[i] = offerResponse(offer)
		}
		c.JSON(http.StatusOK, gin.H{
			"offers":       responses,
			"total":        total,
			"total_pages":  totalPages(total, filter.Limit),
			"current_page": filter.Page,
		})
	}
}

// HandleDeleteOffer handles DELETE /v1/offers/:id
func HandleDeleteOffer(offers *service.OfferService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		offerID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer ID"})
			return
		}

		if err := offers.Delete(c.Request.Context(), actor, offerID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
