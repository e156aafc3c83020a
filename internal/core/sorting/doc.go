// Package sorting provides pure comparison functions for inventory records.
//
// This package contains the functional core logic for ordering deployment
// and system listings. All functions are pure (no I/O, no side effects).
//
// # Functions
//
//   - Primitives: null-safe three-way comparison (CompareNullable, CompareValue, CompareBool, CompareAddress)
//   - Factory: map a field name to a comparator (ParseField, GetSorter)
//   - Sorting: stable in-place ordering of a listing (Sort)
//
// # Usage
//
// The API handlers resolve the requested sort field once and apply it to
// the records loaded from the store:
//
//	if cmp := sorting.GetSorter[*domain.Deployment](field, descending); cmp != nil {
//	    slices.SortStableFunc(deployments, cmp)
//	}
package sorting
