package kernel

import (
	"errors"
	"fmt"

	"ordering/internal/pkg/errs"
	"ordering/internal/pkg/guard"
)

// ErrStreetAddressIsNotConstructed is returned when a StreetAddress did not come from NewStreetAddress.
var ErrStreetAddressIsNotConstructed = errs.NewValueIsRequiredError(
	"street address must be created via NewStreetAddress")

// StreetAddress is the delivery destination of an order.
// All parts are required and immutable once built.
//
// Example:
//
//	addr, err := kernel.NewStreetAddress(kernel.NewUUID(), "Baker Street 221b", "NW1 6XE", "London")
//	if err != nil {
//	    return err
//	}
type StreetAddress struct { //nolint:recvcheck //using for validation
	id         UUID
	street     string
	postalCode string
	city       string
	guard      guard.ConstructorGuard
}

// NewStreetAddress validates and builds a delivery address.
func NewStreetAddress(id UUID, street, postalCode, city string) (StreetAddress, error) {
	addr := StreetAddress{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		addr.setID(id),
		addr.setStreet(street),
		addr.setPostalCode(postalCode),
		addr.setCity(city),
	); err != nil {
		return StreetAddress{}, err
	}

	return addr, nil
}

// Validate reports whether the address was built through NewStreetAddress.
func (a StreetAddress) Validate() error {
	return a.guard.Validate(ErrStreetAddressIsNotConstructed)
}

func (a StreetAddress) ID() UUID {
	return a.id
}

func (a StreetAddress) Street() string {
	return a.street
}

func (a StreetAddress) PostalCode() string {
	return a.postalCode
}

func (a StreetAddress) City() string {
	return a.city
}

// IsEqual compares addresses by value, ignoring the id.
func (a StreetAddress) IsEqual(other StreetAddress) bool {
	return a.street == other.street && a.postalCode == other.postalCode && a.city == other.city
}

func (a StreetAddress) String() string {
	return fmt.Sprintf("%s, %s %s", a.street, a.postalCode, a.city)
}

func (a *StreetAddress) setID(id UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	a.id = id
	return nil
}

func (a *StreetAddress) setStreet(street string) error {
	if street == "" {
		return errs.NewValueIsRequiredError("street")
	}
	a.street = street
	return nil
}

func (a *StreetAddress) setPostalCode(postalCode string) error {
	if postalCode == "" {
		return errs.NewValueIsRequiredError("postalCode")
	}
	a.postalCode = postalCode
	return nil
}

func (a *StreetAddress) setCity(city string) error {
	if city == "" {
		return errs.NewValueIsRequiredError("city")
	}
	a.city = city
	return nil
}
