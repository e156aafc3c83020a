// Package domain contains the inventory record types and their display formatting.
// This is part of the Functional Core - all functions are pure with no I/O.
package domain

import "strings"

// Placeholder is rendered in place of an absent address.
const Placeholder = "-"

// =============================================================================
// Address
// =============================================================================

// Address is a postal address. Every part is optional.
type Address struct {
	ZipCode     *string `json:"zipCode,omitempty" yaml:"zipCode,omitempty"`
	City        *string `json:"city,omitempty" yaml:"city,omitempty"`
	Street      *string `json:"street,omitempty" yaml:"street,omitempty"`
	HouseNumber *string `json:"houseNumber,omitempty" yaml:"houseNumber,omitempty"`
}

// String returns the one-line form of the address.
func (a *Address) String() string {
	return AddressToString(a)
}

// AddressToString renders an address as "{street} {houseNumber}, {zipCode} {city}".
//
// Absent or empty parts are omitted together with their separator. A nil
// address, or one without any printable part, renders as Placeholder.
//
// Example:
//
//	AddressToString(nil) // returns "-"
//	AddressToString(&Address{Street: Ptr("Main"), HouseNumber: Ptr("5"),
//	    ZipCode: Ptr("12345"), City: Ptr("Town")}) // returns "Main 5, 12345 Town"
func AddressToString(a *Address) string {
	if a == nil {
		return Placeholder
	}

	segments := make([]string, 0, 2)
	if s := joinPresent(" ", a.Street, a.HouseNumber); s != "" {
		segments = append(segments, s)
	}
	if s := joinPresent(" ", a.ZipCode, a.City); s != "" {
		segments = append(segments, s)
	}

	if len(segments) == 0 {
		return Placeholder
	}
	return strings.Join(segments, ", ")
}

// joinPresent joins the non-nil, non-empty values with sep.
func joinPresent(sep string, values ...*string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v != nil && *v != "" {
			parts = append(parts, *v)
		}
	}
	return strings.Join(parts, sep)
}

// Ptr returns a pointer to v. It keeps record literals with optional fields short.
func Ptr[T any](v T) *T {
	return &v
}
