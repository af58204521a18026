// Package order contains the Order aggregate: its items, product references,
// status state machine and the domain events its transitions produce.
//
// An order is created transient with NewOrder, validated and initialized once
// (receiving its id, tracking id and saga id), and afterwards only changes
// through Pay, Approve, InitCancel and Cancel. Orders are never deleted;
// APPROVED and CANCELLED are terminal and kept for tracking queries.
package order
