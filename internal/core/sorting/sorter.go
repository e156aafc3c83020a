package sorting

import (
	"cmp"
	"slices"
	"strings"

	"github.com/artpar/hwdb/internal/core/domain"
)

// =============================================================================
// Sort Fields
// =============================================================================

// Field names a sortable record key.
type Field string

const (
	FieldID       Field = "id"
	FieldCID      Field = "cid"
	FieldCustomer Field = "customer"
	FieldAddress  Field = "address"
	FieldTesting  Field = "testing"
)

// Fields lists the recognised sort fields.
var Fields = []Field{FieldID, FieldCID, FieldCustomer, FieldAddress, FieldTesting}

// ParseField matches name case-insensitively against the sort fields.
// An empty or unknown name yields ("", false).
func ParseField(name string) (Field, bool) {
	f := Field(strings.ToLower(name))
	if slices.Contains(Fields, f) {
		return f, true
	}
	return "", false
}

// =============================================================================
// Comparator Factory
// =============================================================================

// Record is the view of a deployment or system the comparators work on.
type Record interface {
	RecordID() int64
	CustomerID() int64
	CompanyName() string
	Location() *domain.Address
	IsTesting() *bool
}

// Comparator returns a negative number if a sorts before b, a positive
// number if it sorts after b and zero if their order is undecided.
type Comparator[T Record] func(a, b T) int

// GetSorter returns the comparator for the named field.
//
// The field is matched case-insensitively. An empty or unknown field yields
// a nil comparator, meaning no sorting was requested. With descending set
// the comparator's sign is inverted.
func GetSorter[T Record](field string, descending bool) Comparator[T] {
	f, ok := ParseField(field)
	if !ok {
		return nil
	}

	var compare Comparator[T]
	switch f {
	case FieldID:
		compare = func(a, b T) int { return cmp.Compare(a.RecordID(), b.RecordID()) }
	case FieldCID:
		compare = func(a, b T) int { return cmp.Compare(a.CustomerID(), b.CustomerID()) }
	case FieldCustomer:
		compare = func(a, b T) int { return strings.Compare(a.CompanyName(), b.CompanyName()) }
	case FieldAddress:
		compare = func(a, b T) int { return CompareAddress(a.Location(), b.Location()) }
	case FieldTesting:
		compare = func(a, b T) int { return CompareBool(a.IsTesting(), b.IsTesting()) }
	}

	if descending {
		return func(a, b T) int { return -compare(a, b) }
	}
	return compare
}

// Sort stable-sorts records in place by the named field and reports
// whether a comparator was applied. An unknown field leaves records as is.
func Sort[T Record](records []T, field string, descending bool) bool {
	compare := GetSorter[T](field, descending)
	if compare == nil {
		return false
	}
	slices.SortStableFunc(records, compare)
	return true
}
