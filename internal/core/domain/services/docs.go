// Package services provides domain services of the order service.
//
// The package includes:
//   - OrderDomainService: validates a new order against its restaurant and
//     drives the order through payment, approval and cancellation
//
// Domain services hold no state and perform no I/O beyond logging.
package services
