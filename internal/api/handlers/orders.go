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

// OrderResponse represents the order payload returned to clients
type OrderResponse struct {
	ID              string                 `json:"id"`
	OrderNumber     string                 `json:"order_number"`
	SupplierID      string                 `json:"supplier_id"`
	CustomerID      string                 `json:"customer_id"`
	OfferID         string                 `json:"offer_id"`
	Items           []OrderItemResponse    `json:"items"`
	TotalAmount     float64                `json:"total_amount"`
	Currency        domain.Currency        `json:"currency"`
	Status          domain.OrderStatus     `json:"status"`
	DeliveryDetails gin.H                  `json:"delivery_details"`
	PaymentDetails  gin.H                  `json:"payment_details"`
	Documents       []DocumentResponse     `json:"documents,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	History         []HistoryEntryResponse `json:"history,omitempty"`
	CreatedAt       string                 `json:"created_at"`
	UpdatedAt       string                 `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID string      `json:"product_id"`
	Quantity  float64     `json:"quantity"`
	Price     float64     `json:"price"`
	Unit      domain.Unit `json:"unit"`
	Subtotal  float64     `json:"subtotal"`
}

type DocumentResponse struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
	UploadedBy string `json:"uploaded_by"`
}

func orderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID.String(),
			Quantity:  item.Quantity,
			Price:     item.Price,
			Unit:      item.Unit,
			Subtotal:  item.Subtotal,
		}
	}

	docs := make([]DocumentResponse, len(order.Documents))
	for i, doc := range order.Documents {
		docs[i] = DocumentResponse{
			ID:         doc.ID.String(),
			Type:       doc.Type,
			URL:        doc.URL,
			UploadedAt: formatTime(doc.UploadedAt),
			UploadedBy: doc.UploadedBy.String(),
		}
	}

	return OrderResponse{
		ID:          order.ID.String(),
		OrderNumber: order.OrderNumber,
		SupplierID:  order.SupplierID.String(),
		CustomerID:  order.CustomerID.String(),
		OfferID:     order.OfferID.String(),
		Items:       items,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		Status:      order.Status,
		DeliveryDetails: gin.H{
			"address":                 order.DeliveryDetails.Address,
			"city":                    order.DeliveryDetails.City,
			"country":                 order.DeliveryDetails.Country,
			"postal_code":             order.DeliveryDetails.PostalCode,
			"contact_person":          order.DeliveryDetails.ContactPerson,
			"contact_phone":           order.DeliveryDetails.ContactPhone,
			"estimated_delivery_date": formatTime(order.DeliveryDetails.EstimatedDeliveryDate),
			"actual_delivery_date":    formatTimePtr(order.DeliveryDetails.ActualDeliveryDate),
			"tracking_number":         order.DeliveryDetails.TrackingNumber,
			"shipping_method":         order.DeliveryDetails.ShippingMethod,
		},
		PaymentDetails: gin.H{
			"method":         order.PaymentDetails.Method,
			"status":         order.PaymentDetails.Status,
			"transaction_id": order.PaymentDetails.TransactionID,
			"paid_at":        formatTimePtr(order.PaymentDetails.PaidAt),
			"due_date":       formatTime(order.PaymentDetails.DueDate),
		},
		Documents: docs,
		Notes:     order.Notes,
		History:   historyResponse(order.History),
		CreatedAt: formatTime(order.CreatedAt),
		UpdatedAt: formatTime(order.UpdatedAt),
	}
}

// HandleCreateOrder handles POST /v1/orders
func HandleCreateOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req service.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		order, err := orders.CreateFromOffer(c.Request.Context(), actor, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": orderResponse(order)})
	}
}

// HandleTransitionOrder handles POST /v1/orders/:id/status
func HandleTransitionOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var req service.TransitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		order, err := orders.Transition(c.Request.Context(), actor, orderID, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": orderResponse(order)})
	}
}

// HandleCancelOrder handles POST /v1/orders/:id/cancel
func HandleCancelOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var req service.CancelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		order, err := orders.Cancel(c.Request.Context(), actor, orderID, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": orderResponse(order)})
	}
}

// HandleUpdateOrder handles PUT /v1/orders/:id
func HandleUpdateOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var req service.UpdateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		order, err := orders.UpdateDetails(c.Request.Context(), actor, orderID, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": orderResponse(order)})
	}
}

// HandleAddOrderDocument handles POST /v1/orders/:id/documents
func HandleAddOrderDocument(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var req service.AddDocumentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		order, err := orders.AddDocument(c.Request.Context(), actor, orderID, req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": orderResponse(order)})
	}
}

// HandleGetOrder handles GET /v1/orders/:id
func HandleGetOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		order, err := orders.Get(c.Request.Context(), actor, orderID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": orderResponse(order)})
	}
}

// HandleListOrders handles GET /v1/orders
func HandleListOrders(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.GetActorFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		filter := repository.OrderFilter{ListOptions: pageOptions(c, 10)}
		if statusStr := c.Query("status"); statusStr != "" {
			status := domain.OrderStatus(statusStr)
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

		list, total, err := orders.List(c.Request.Context(), actor, filter)
		if err != nil {
			logger.Error("Failed to list orders", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		responses := make([]OrderResponse, len(list))
		for i, order := range list {
			responses[i] = orderResponse(order)
		}
		c.JSON(http.StatusOK, gin.H{
			"orders":       responses,
			"total":        total,
			"total_pages":  totalPages(total, filter.Limit),
			"current_page": filter.Page,
		})
	}
}
