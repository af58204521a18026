// Package orderrepo persists the order aggregate with GORM. An order is stored
// across three tables: orders, order_items and order_addresses. Only the
// orders row changes after creation; it carries the optimistic version.
package orderrepo

import (
	"ordering/internal/core/domain/model/kernel"
	"ordering/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// OrderDTO is the orders row.
type OrderDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null"`
	RestaurantID    uuid.UUID       `gorm:"type:uuid;not null"`
	TrackingID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	SagaID          uuid.UUID       `gorm:"type:uuid;not null"`
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status          string          `gorm:"type:varchar(16);not null;index"`
	FailureMessages pq.StringArray  `gorm:"type:text[]"`
	Version         int64           `gorm:"not null;default:0"`

	Items   []OrderItemDTO  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Address OrderAddressDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default naming.
func (OrderDTO) TableName() string {
	return "orders"
}

// OrderItemDTO is one order_items row. The primary key is (order_id, id).
type OrderItemDTO struct {
	ID        int64           `gorm:"primaryKey;autoIncrement:false"`
	OrderID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Price     decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Quantity  int             `gorm:"not null"`
	SubTotal  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

// OrderAddressDTO is the order_addresses row, one per order.
type OrderAddressDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Street     string    `gorm:"type:varchar(255);not null"`
	PostalCode string    `gorm:"type:varchar(32);not null"`
	City       string    `gorm:"type:varchar(128);not null"`
}

func (OrderAddressDTO) TableName() string {
	return "order_addresses"
}

func fromDomain(o *order.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, OrderItemDTO{
			ID:        item.ID(),
			OrderID:   o.ID().UUID(),
			ProductID: item.Product().ID().UUID(),
			Price:     item.Price().Amount(),
			Quantity:  item.Quantity(),
			SubTotal:  item.Subtotal().Amount(),
		})
	}

	address := o.DeliveryAddress()
	return OrderDTO{
		ID:              o.ID().UUID(),
		CustomerID:      o.CustomerID().UUID(),
		RestaurantID:    o.RestaurantID().UUID(),
		TrackingID:      o.TrackingID().UUID(),
		SagaID:          o.SagaID().UUID(),
		Price:           o.Price().Amount(),
		Status:          o.Status().String(),
		FailureMessages: o.FailureMessages(),
		Version:         o.Version(),
		Items:           items,
		Address: OrderAddressDTO{
			ID:         address.ID().UUID(),
			OrderID:    o.ID().UUID(),
			Street:     address.Street(),
			PostalCode: address.PostalCode(),
			City:       address.City(),
		},
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	ids, err := parseUUIDs(dto.ID, dto.CustomerID, dto.RestaurantID, dto.TrackingID, dto.SagaID)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	addressID, err := kernel.UUIDFromBytes(dto.Address.ID[:])
	if err != nil {
		return nil, err
	}
	address, err := kernel.NewStreetAddress(addressID, dto.Address.Street, dto.Address.PostalCode, dto.Address.City)
	if err != nil {
		return nil, err
	}

	items := make([]*order.OrderItem, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(ids[0], itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(order.RestoreParams{
		ID:              ids[0],
		CustomerID:      ids[1],
		RestaurantID:    ids[2],
		DeliveryAddress: address,
		Price:           kernel.NewMoney(dto.Price),
		Items:           items,
		TrackingID:      ids[3],
		SagaID:          ids[4],
		Status:          status,
		FailureMessages: dto.FailureMessages,
		Version:         dto.Version,
	})
}

// itemToDomain restores an item. The catalog name is not stored; the stored
// unit price was checked against the catalog price when the order was created.
func itemToDomain(orderID kernel.UUID, dto OrderItemDTO) (*order.OrderItem, error) {
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}

	price := kernel.NewMoney(dto.Price)
	product, err := order.NewProduct(productID, "", price)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrderItem(dto.ID, orderID, product, dto.Quantity, price, kernel.NewMoney(dto.SubTotal))
}

func parseUUIDs(raw ...uuid.UUID) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
