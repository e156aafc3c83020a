package sorting

import (
	"cmp"

	"github.com/artpar/hwdb/internal/core/domain"
)

// =============================================================================
// Null-safe Primitives
// =============================================================================

// CompareNullable orders nil before non-nil.
//
// It returns (0, true) if both values are nil, (-1, true) if only a is nil
// and (1, true) if only b is nil. If neither is nil the result is
// (0, false): the comparison is not decided and the caller has to compare
// the values themselves.
func CompareNullable[T any](a, b *T) (int, bool) {
	switch {
	case a == nil && b == nil:
		return 0, true
	case a == nil:
		return -1, true
	case b == nil:
		return 1, true
	}
	return 0, false
}

// CompareValue compares two nullable ordered values, nil first.
func CompareValue[T cmp.Ordered](a, b *T) int {
	if result, ok := CompareNullable(a, b); ok {
		return result
	}
	return cmp.Compare(*a, *b)
}

// CompareBool compares two nullable flags, nil first and false before true.
func CompareBool(a, b *bool) int {
	if result, ok := CompareNullable(a, b); ok {
		return result
	}
	switch {
	case *a == *b:
		return 0
	case *b:
		return -1
	}
	return 1
}

// CompareAddress compares two nullable addresses, nil first.
//
// Present addresses are ordered by zip code, then city, then street, then
// house number. Each part is compared with CompareValue.
func CompareAddress(a, b *domain.Address) int {
	if result, ok := CompareNullable(a, b); ok {
		return result
	}
	if result := CompareValue(a.ZipCode, b.ZipCode); result != 0 {
		return result
	}
	if result := CompareValue(a.City, b.City); result != 0 {
		return result
	}
	if result := CompareValue(a.Street, b.Street); result != 0 {
		return result
	}
	return CompareValue(a.HouseNumber, b.HouseNumber)
}
