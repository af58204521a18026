// Package restaurantrepo reads the restaurant catalog projection used to
// confirm the products of a new order.
package restaurantrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/restaurant"
	"ordering/internal/pkg/errs"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type restaurantRow struct {
	ID     string `db:"id"`
	Active bool   `db:"active"`
}

type productRow struct {
	ProductID string          `db:"product_id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Available bool            `db:"available"`
}

// PostgresRestaurantRepository implements ports.RestaurantRepository.
type PostgresRestaurantRepository struct {
	db *sqlx.DB
	qb sq.StatementBuilderType
}

func NewPostgresRestaurantRepository(db *sqlx.DB) *PostgresRestaurantRepository {
	return &PostgresRestaurantRepository{
		db: db,
		qb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// GetWithProducts loads the restaurant and the requested catalog entries.
func (r *PostgresRestaurantRepository) GetWithProducts(
	ctx context.Context,
	restaurantID kernel.UUID,
	productIDs []kernel.UUID,
) (*restaurant.Restaurant, error) {
	query, args := r.qb.Select("id", "active").
		From("restaurants").
		Where(sq.Eq{"id": restaurantID.String()}).
		MustSql()

	var row restaurantRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.NewObjectNotFoundError("restaurant", restaurantID.String())
		}
		return nil, fmt.Errorf("failed to get restaurant: %w", err)
	}

	products, err := r.products(ctx, restaurantID, productIDs)
	if err != nil {
		return nil, err
	}

	id, err := kernel.UUIDFromString(row.ID)
	if err != nil {
		return nil, err
	}
	return restaurant.NewRestaurant(id, row.Active, products)
}

func (r *PostgresRestaurantRepository) products(
	ctx context.Context,
	restaurantID kernel.UUID,
	productIDs []kernel.UUID,
) ([]restaurant.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id.String()
	}

	query, args := r.qb.Select("product_id", "name", "price", "available").
		From("restaurant_products").
		Where(sq.Eq{"restaurant_id": restaurantID.String()}).
		Where(sq.Eq{"product_id": ids}).
		MustSql()

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to select restaurant products: %w", err)
	}

	products := make([]restaurant.Product, 0, len(rows))
	for _, row := range rows {
		productID, err := kernel.UUIDFromString(row.ProductID)
		if err != nil {
			return nil, err
		}
		product, err := restaurant.NewProduct(productID, row.Name, kernel.NewMoney(row.Price), row.Available)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}
