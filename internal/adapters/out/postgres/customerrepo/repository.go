// Package customerrepo reads the customer projection the order service keeps
// of the customer service.
package customerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ordering/internal/core/domain/model/customer"
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/pkg/errs"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type customerRow struct {
	ID string `db:"id"`
}

// PostgresCustomerRepository implements ports.CustomerRepository.
type PostgresCustomerRepository struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresCustomerRepository(db *sqlx.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Get returns the customer or errs.ObjectNotFoundError.
func (r *PostgresCustomerRepository) Get(ctx context.Context, id kernel.UUID) (*customer.Customer, error) {
	query, args := r.qb.Select("id").
		From("customers").
		Where(sq.Eq{"id": id.String()}).
		MustSql()

	var row customerRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NewObjectNotFoundError("customer", id.String())
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	customerID, err := kernel.UUIDFromString(row.ID)
	if err != nil {
		return nil, err
	}
	return customer.NewCustomer(customerID)
}
