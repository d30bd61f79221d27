package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agrobridge/tradeapi/internal/domain"
	"github.com/agrobridge/tradeapi/internal/repository"
	"github.com/agrobridge/tradeapi/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `
	id, order_number, supplier_id, customer_id, offer_id, total_amount,
	currency, status, delivery_address, delivery_city, delivery_country,
	delivery_postal_code, delivery_contact_person, delivery_contact_phone,
	delivery_estimated_date, delivery_actual_date, delivery_tracking_number,
	delivery_shipping_method, payment_method, payment_status,
	payment_transaction_id, payment_paid_at, payment_due_date, notes,
	created_by, updated_by, created_at, updated_at`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)
	`
	_, err = tx.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		order.SupplierID,
		order.CustomerID,
		order.OfferID,
		order.TotalAmount,
		order.Currency,
		order.Status,
		order.DeliveryDetails.Address,
		order.DeliveryDetails.City,
		order.DeliveryDetails.Country,
		order.DeliveryDetails.PostalCode,
		order.DeliveryDetails.ContactPerson,
		order.DeliveryDetails.ContactPhone,
		order.DeliveryDetails.EstimatedDeliveryDate,
		order.DeliveryDetails.ActualDeliveryDate,
		order.DeliveryDetails.TrackingNumber,
		order.DeliveryDetails.ShippingMethod,
		order.PaymentDetails.Method,
		order.PaymentDetails.Status,
		order.PaymentDetails.TransactionID,
		order.PaymentDetails.PaidAt,
		order.PaymentDetails.DueDate,
		order.Notes,
		order.CreatedBy,
		order.UpdatedBy,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, price, unit, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range order.Items {
		item := &order.Items[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.OrderID = order.ID
		_, err = tx.ExecContext(ctx, itemQuery,
			item.ID, item.OrderID, item.ProductID,
			item.Quantity, item.Price, item.Unit, item.Subtotal)
		if err != nil {
			r.logger.Error("Failed to create order item", zap.Error(err))
			return err
		}
	}

	for _, entry := range order.History {
		if err := appendHistoryTx(ctx, tx, "order_history", "order_id", order.ID, entry); err != nil {
			r.logger.Error("Failed to write order history", zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}

	if err := r.loadItems(ctx, order); err != nil {
		return nil, err
	}
	if err := r.loadDocuments(ctx, order); err != nil {
		return nil, err
	}

	history, err := loadHistory(ctx, r.db, "order_history", "order_id", id)
	if err != nil {
		r.logger.Error("Failed to load order history", zap.Error(err))
		return nil, err
	}
	order.History = history

	return order, nil
}

// UpdateStatus only succeeds when the row still carries the expected status,
// so a concurrent writer loses with ErrConflict instead of clobbering.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next domain.OrderStatus, patch repository.OrderStatusPatch) error {
	query := `
		UPDATE orders
		SET status = $3,
		    updated_by = $4,
		    delivery_actual_date = COALESCE($5, delivery_actual_date),
		    payment_status = COALESCE($6, payment_status),
		    payment_paid_at = COALESCE($7, payment_paid_at),
		    updated_at = $8
		WHERE id = $1 AND status = $2
	`

	res, err := r.db.ExecContext(ctx, query,
		id, expected, next,
		patch.UpdatedBy, patch.ActualDeliveryDate, patch.PaymentStatus, patch.PaidAt,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return &errors.ErrConflict{Resource: "order", ID: id.String()}
	}
	return nil
}

// UpdateDetails only succeeds while the row is still in motion, so a status
// change racing the caller's read loses with ErrConflict instead of mutating
// a frozen order.
func (r *orderRepository) UpdateDetails(ctx context.Context, order *domain.Order) error {
	query := `
		UPDATE orders
		SET delivery_address = $2, delivery_city = $3, delivery_country = $4,
		    delivery_postal_code = $5, delivery_contact_person = $6,
		    delivery_contact_phone = $7, delivery_estimated_date = $8,
		    delivery_tracking_number = $9, delivery_shipping_method = $10,
		    payment_method = $11, payment_status = $12,
		    payment_transaction_id = $13, payment_due_date = $14,
		    notes = $15, updated_by = $16, updated_at = $17
		WHERE id = $1 AND status IN ($18, $19, $20)
	`

	order.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.DeliveryDetails.Address,
		order.DeliveryDetails.City,
		order.DeliveryDetails.Country,
		order.DeliveryDetails.PostalCode,
		order.DeliveryDetails.ContactPerson,
		order.DeliveryDetails.ContactPhone,
		order.DeliveryDetails.EstimatedDeliveryDate,
		order.DeliveryDetails.TrackingNumber,
		order.DeliveryDetails.ShippingMethod,
		order.PaymentDetails.Method,
		order.PaymentDetails.Status,
		order.PaymentDetails.TransactionID,
		order.PaymentDetails.DueDate,
		order.Notes,
		order.UpdatedBy,
		order.UpdatedAt,
		domain.OrderStatusNew,
		domain.OrderStatusConfirmed,
		domain.OrderStatusInProgress,
	)
	if err != nil {
		r.logger.Error("Failed to update order details", zap.Error(err))
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return &errors.ErrConflict{Resource: "order", ID: order.ID.String()}
	}
	return nil
}

func (r *orderRepository) AppendHistory(ctx context.Context, id uuid.UUID, entry domain.HistoryEntry) error {
	return appendHistoryTx(ctx, r.db, "order_history", "order_id", id, entry)
}

func (r *orderRepository) AddDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now()
	}

	query := `
		INSERT INTO order_documents (id, order_id, type, url, uploaded_at, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.OrderID, doc.Type, doc.URL, doc.UploadedAt, doc.UploadedBy)
	if err != nil {
		r.logger.Error("Failed to add order document", zap.Error(err))
	}
	return err
}

// NextOrderNumber atomically increments the per-month sequence. Numbering must
// never come from counting rows: two concurrent creates would collide.
func (r *orderRepository) NextOrderNumber(ctx context.Context, period string) (int64, error) {
	query := `
		INSERT INTO order_sequences (period, value)
		VALUES ($1, 1)
		ON CONFLICT (period) DO UPDATE SET value = order_sequences.value + 1
		RETURNING value
	`

	var seq int64
	if err := r.db.QueryRowContext(ctx, query, period).Scan(&seq); err != nil {
		r.logger.Error("Failed to advance order sequence", zap.Error(err))
		return 0, err
	}
	return seq, nil
}

func (r *orderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.SupplierID != nil {
		args = append(args, *filter.SupplierID)
		where += fmt.Sprintf(" AND supplier_id = $%d", len(args))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		where += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders "+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count orders", zap.Error(err))
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.Sort != "" {
		order = filter.Sort
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf("SELECT %s FROM orders %s ORDER BY %s LIMIT $%d OFFSET $%d",
		orderColumns, where, order, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, o := range orders {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, 0, err
		}
	}

	return orders, total, nil
}

func (r *orderRepository) loadItems(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, order_id, product_id, quantity, price, unit, subtotal
		FROM order_items WHERE order_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		r.logger.Error("Failed to load order items", zap.Error(err))
		return err
	}
	defer rows.Close()

	order.Items = order.Items[:0]
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.Quantity, &item.Price, &item.Unit, &item.Subtotal); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

func (r *orderRepository) loadDocuments(ctx context.Context, order *domain.Order) error {
	query := `
		SELECT id, order_id, type, url, uploaded_at, uploaded_by
		FROM order_documents WHERE order_id = $1
		ORDER BY uploaded_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, order.ID)
	if err != nil {
		r.logger.Error("Failed to load order documents", zap.Error(err))
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(&doc.ID, &doc.OrderID, &doc.Type, &doc.URL,
			&doc.UploadedAt, &doc.UploadedBy); err != nil {
			return err
		}
		order.Documents = append(order.Documents, doc)
	}
	return rows.Err()
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var postalCode, trackingNumber, transactionID, notes sql.NullString
	var actualDate, paidAt sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.SupplierID,
		&order.CustomerID,
		&order.OfferID,
		&order.TotalAmount,
		&order.Currency,
		&order.Status,
		&order.DeliveryDetails.Address,
		&order.DeliveryDetails.City,
		&order.DeliveryDetails.Country,
		&postalCode,
		&order.DeliveryDetails.ContactPerson,
		&order.DeliveryDetails.ContactPhone,
		&order.DeliveryDetails.EstimatedDeliveryDate,
		&actualDate,
		&trackingNumber,
		&order.DeliveryDetails.ShippingMethod,
		&order.PaymentDetails.Method,
		&order.PaymentDetails.Status,
		&transactionID,
		&paidAt,
		&order.PaymentDetails.DueDate,
		&notes,
		&order.CreatedBy,
		&order.UpdatedBy,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if postalCode.Valid {
		order.DeliveryDetails.PostalCode = postalCode.String
	}
	if actualDate.Valid {
		order.DeliveryDetails.ActualDeliveryDate = &actualDate.Time
	}
	if trackingNumber.Valid {
		order.DeliveryDetails.TrackingNumber = &trackingNumber.String
	}
	if transactionID.Valid {
		order.PaymentDetails.TransactionID = &transactionID.String
	}
	if paidAt.Valid {
		order.PaymentDetails.PaidAt = &paidAt.Time
	}
	if notes.Valid {
		order.Notes = notes.String
	}

	return &order, nil
}
