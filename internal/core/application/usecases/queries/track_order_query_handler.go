package queries

import (
	"context"
	"database/sql"
	"errors"

	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/errs"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// TrackOrderQueryHandler reads the order status straight from the orders table.
//
// Example:
//
//	handler := NewTrackOrderQueryHandler(db)
//	resp, err := handler.Handle(ctx, query)
type TrackOrderQueryHandler struct {
	db *gorm.DB
}

// NewTrackOrderQueryHandler requires a GORM connection.
func NewTrackOrderQueryHandler(db *gorm.DB) TrackOrderQueryHandler {
	return TrackOrderQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError for an unknown tracking id.
func (h TrackOrderQueryHandler) Handle(ctx context.Context, query TrackOrderQuery) (TrackOrderResponse, error) {
	if err := query.Validate(); err != nil {
		return TrackOrderResponse{}, err
	}

	var row struct {
		Status          string
		FailureMessages pq.StringArray
	}

	err := h.db.WithContext(ctx).Raw(`
		SELECT
			status,
			failure_messages
		FROM orders
		WHERE tracking_id = ?
	`, query.TrackingID().UUID()).Row().Scan(&row.Status, &row.FailureMessages)
	if errors.Is(err, sql.ErrNoRows) {
		return TrackOrderResponse{}, errs.NewObjectNotFoundError("trackingId", query.TrackingID().String())
	}
	if err != nil {
		return TrackOrderResponse{}, err
	}

	status, err := order.ParseStatus(row.Status)
	if err != nil {
		return TrackOrderResponse{}, err
	}

	failureMessages := []string(row.FailureMessages)
	if failureMessages == nil {
		failureMessages = []string{}
	}

	return TrackOrderResponse{
		TrackingID:      query.TrackingID(),
		Status:          status,
		FailureMessages: failureMessages,
	}, nil
}
