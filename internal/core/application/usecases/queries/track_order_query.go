package queries

import (
	"errors"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"
	"ordering/internal/pkg/guard"
)

var (
	ErrTrackOrderQueryIsNotConstructed = errors.New(
		"TrackOrderQuery must be created via NewTrackOrderQuery constructor",
	)
)

// TrackOrderQuery looks up an order by the tracking id handed to the customer.
//
// Example:
//
//	query, err := queries.NewTrackOrderQuery(trackingID)
//	if err != nil {
//	    return err
//	}
//
//	resp, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // unknown tracking id
//	}
//	fmt.Printf("Order %s is %s\n", resp.TrackingID, resp.Status)
type TrackOrderQuery struct {
	trackingID kernel.UUID

	guard guard.ConstructorGuard
}

// NewTrackOrderQuery requires a valid tracking id.
func NewTrackOrderQuery(trackingID kernel.UUID) (TrackOrderQuery, error) {
	if err := trackingID.Validate(); err != nil {
		return TrackOrderQuery{}, err
	}

	return TrackOrderQuery{
		trackingID: trackingID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q TrackOrderQuery) Validate() error {
	return q.guard.Validate(ErrTrackOrderQueryIsNotConstructed)
}

func (q TrackOrderQuery) TrackingID() kernel.UUID {
	return q.trackingID
}

// TrackOrderResponse is the customer-facing view of an order.
// The internal order id is never exposed.
type TrackOrderResponse struct {
	TrackingID      kernel.UUID
	Status          order.Status
	FailureMessages []string
}
