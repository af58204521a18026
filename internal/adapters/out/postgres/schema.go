package postgres

import (
	"context"
	"fmt"

	"ordering/internal/adapters/out/postgres/orderrepo"
	"ordering/internal/adapters/out/postgres/outboxrepo"

	"gorm.io/gorm"
)

// catalogDDL creates the read-only projections of the customer and restaurant
// services. They are filled by those services; the order service only reads them.
var catalogDDL = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id uuid PRIMARY KEY
	)`,
	`CREATE TABLE IF NOT EXISTS restaurants (
		id     uuid PRIMARY KEY,
		active boolean NOT NULL DEFAULT true
	)`,
	`CREATE TABLE IF NOT EXISTS restaurant_products (
		restaurant_id uuid NOT NULL REFERENCES restaurants (id) ON DELETE CASCADE,
		product_id    uuid NOT NULL,
		name          varchar(255) NOT NULL,
		price         numeric(10, 2) NOT NULL,
		available     boolean NOT NULL DEFAULT true,
		PRIMARY KEY (restaurant_id, product_id)
	)`,
}

// Migrate creates or updates every table the order service uses.
func Migrate(ctx context.Context, db *gorm.DB) error {
	conn := db.WithContext(ctx)

	if err := conn.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.OrderItemDTO{},
		&orderrepo.OrderAddressDTO{},
		&outboxrepo.OutboxMessageDTO{},
	); err != nil {
		return fmt.Errorf("failed to migrate order tables: %w", err)
	}

	for _, stmt := range catalogDDL {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to migrate catalog tables: %w", err)
		}
	}

	return nil
}
