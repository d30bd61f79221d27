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

type offerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *sql.DB, logger *zap.Logger) *offerRepository {
	return &offerRepository{
		db:     db,
		logger: logger,
	}
}

const offerColumns = `
	id, product_id, supplier_id, price_value, price_currency, quantity, unit,
	status, expires_at, delivery_region, delivery_estimated_days,
	delivery_shipping_method, delivery_incoterm, payment_method,
	payment_days_to_payment, notes, reviewed_by, reviewed_at,
	rejection_reason, created_at, updated_at`

func (r *offerRepository) Create(ctx context.Context, offer *domain.Offer) error {
	now := time.Now()
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	if offer.CreatedAt.IsZero() {
		offer.CreatedAt = now
	}
	if offer.UpdatedAt.IsZero() {
		offer.UpdatedAt = now
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO offers (` + offerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err = tx.ExecContext(ctx, query,
		offer.ID,
		offer.ProductID,
		offer.SupplierID,
		offer.Price.Value,
		offer.Price.Currency,
		offer.Quantity,
		offer.Unit,
		offer.Status,
		offer.ExpiresAt,
		offer.DeliveryTerms.Region,
		offer.DeliveryTerms.EstimatedDays,
		offer.DeliveryTerms.ShippingMethod,
		offer.DeliveryTerms.Incoterm,
		offer.PaymentTerms.Method,
		offer.PaymentTerms.DaysToPayment,
		offer.Notes,
		offer.ReviewedBy,
		offer.ReviewedAt,
		offer.RejectionReason,
		offer.CreatedAt,
		offer.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create offer", zap.Error(err))
		return err
	}

	for _, entry := range offer.History {
		if err := appendHistoryTx(ctx, tx, "offer_history", "offer_id", offer.ID, entry); err != nil {
			r.logger.Error("Failed to write offer history", zap.Error(err))
			return err
		}
	}

	return tx.Commit()
}

func (r *offerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

	offer, err := scanOffer(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "offer", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get offer by ID", zap.Error(err))
		return nil, err
	}

	history, err := loadHistory(ctx, r.db, "offer_history", "offer_id", id)
	if err != nil {
		r.logger.Error("Failed to load offer history", zap.Error(err))
		return nil, err
	}
	offer.History = history

	return offer, nil
}

// UpdateTerms only succeeds while the row is still editable, so a status
// change racing the caller's read loses with ErrConflict instead of mutating
// a terminal offer.
func (r *offerRepository) UpdateTerms(ctx context.Context, offer *domain.Offer) error {
	query := `
		UPDATE offers
		SET price_value = $2, price_currency = $3, quantity = $4, unit = $5,
		    expires_at = $6, delivery_region = $7, delivery_estimated_days = $8,
		    delivery_shipping_method = $9, delivery_incoterm = $10,
		    payment_method = $11, payment_days_to_payment = $12, notes = $13,
		    updated_at = $14
		WHERE id = $1 AND status IN ($15, $16)
	`

	offer.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, query,
		offer.ID,
		offer.Price.Value,
		offer.Price.Currency,
		offer.Quantity,
		offer.Unit,
		offer.ExpiresAt,
		offer.DeliveryTerms.Region,
		offer.DeliveryTerms.EstimatedDays,
		offer.DeliveryTerms.ShippingMethod,
		offer.DeliveryTerms.Incoterm,
		offer.PaymentTerms.Method,
		offer.PaymentTerms.DaysToPayment,
		offer.Notes,
		offer.UpdatedAt,
		domain.OfferStatusNegotiating,
		domain.OfferStatusPendingApproval,
	)
	if err != nil {
		r.logger.Error("Failed to update offer terms", zap.Error(err))
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return &errors.ErrConflict{Resource: "offer", ID: offer.ID.String()}
	}
	return nil
}

// UpdateStatus only succeeds when the row still carries the expected status,
// so a concurrent writer loses with ErrConflict instead of clobbering.
func (r *offerRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected, next domain.OfferStatus, patch repository.OfferStatusPatch) error {
	query := `
		UPDATE offers
		SET status = $3,
		    reviewed_by = COALESCE($4, reviewed_by),
		    reviewed_at = COALESCE($5, reviewed_at),
		    rejection_reason = COALESCE($6, rejection_reason),
		    updated_at = $7
		WHERE id = $1 AND status = $2
	`

	res, err := r.db.ExecContext(ctx, query,
		id, expected, next,
		patch.ReviewedBy, patch.ReviewedAt, patch.RejectionReason,
		time.Now(),
	)
	if err != nil {
		r.logger.Error("Failed to update offer status", zap.Error(err))
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return &errors.ErrConflict{Resource: "offer", ID: id.String()}
	}
	return nil
}

func (r *offerRepository) AppendHistory(ctx context.Context, id uuid.UUID, entry domain.HistoryEntry) error {
	return appendHistoryTx(ctx, r.db, "offer_history", "offer_id", id, entry)
}

func (r *offerRepository) List(ctx context.Context, filter repository.OfferFilter) ([]*domain.Offer, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}

	if filter.SupplierID != nil {
		args = append(args, *filter.SupplierID)
		where += fmt.Sprintf(" AND supplier_id = $%d", len(args))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		where += fmt.Sprintf(" AND product_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM offers "+where, args...).Scan(&total); err != nil {
		r.logger.Error("Failed to count offers", zap.Error(err))
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.Sort != "" {
		order = filter.Sort
	}

	args = append(args, filter.Limit, filter.Offset())
	query := fmt.Sprintf("SELECT %s FROM offers %s ORDER BY %s LIMIT $%d OFFSET $%d",
		offerColumns, where, order, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list offers", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var offers []*domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, 0, err
		}
		offers = append(offers, offer)
	}

	return offers, total, rows.Err()
}

func (r *offerRepository) ListExpirable(ctx context.Context, now time.Time) ([]*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM offers
		WHERE status IN ($1, $2) AND expires_at < $3`

	rows, err := r.db.QueryContext(ctx, query,
		domain.OfferStatusNegotiating, domain.OfferStatusPendingApproval, now)
	if err != nil {
		r.logger.Error("Failed to list expirable offers", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var offers []*domain.Offer
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		offers = append(offers, offer)
	}

	return offers, rows.Err()
}

func (r *offerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete offer", zap.Error(err))
		return err
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return &errors.ErrNotFound{Resource: "offer", ID: id.String()}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOffer(row rowScanner) (*domain.Offer, error) {
	var offer domain.Offer
	var reviewedBy sql.NullString
	var reviewedAt sql.NullTime
	var rejectionReason sql.NullString

	err := row.Scan(
		&offer.ID,
		&offer.ProductID,
		&offer.SupplierID,
		&offer.Price.Value,
		&offer.Price.Currency,
		&offer.Quantity,
		&offer.Unit,
		&offer.Status,
		&offer.ExpiresAt,
		&offer.DeliveryTerms.Region,
		&offer.DeliveryTerms.EstimatedDays,
		&offer.DeliveryTerms.ShippingMethod,
		&offer.DeliveryTerms.Incoterm,
		&offer.PaymentTerms.Method,
		&offer.PaymentTerms.DaysToPayment,
		&offer.Notes,
		&reviewedBy,
		&reviewedAt,
		&rejectionReason,
		&offer.CreatedAt,
		&offer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reviewedBy.Valid {
		id, err := uuid.Parse(reviewedBy.String)
		if err == nil {
			offer.ReviewedBy = &id
		}
	}
	if reviewedAt.Valid {
		offer.ReviewedAt = &reviewedAt.Time
	}
	if rejectionReason.Valid {
		offer.RejectionReason = &rejectionReason.String
	}

	return &offer, nil
}
