// Package kernel provides the value objects shared across the order service domain.
//
// The package includes:
//   - UUID: identifiers for orders, tracking, sagas, customers, restaurants and products
//   - Money: two-digit decimal amounts rounded half-to-even after every operation
//   - StreetAddress: the delivery destination of an order
//
// All kernel types are immutable and safe for concurrent use.
package kernel
