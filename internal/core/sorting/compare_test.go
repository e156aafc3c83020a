package sorting

import (
	"testing"

	"github.com/artpar/hwdb/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// =============================================================================
// CompareNullable Tests
// =============================================================================

func TestCompareNullable(t *testing.T) {
	one := 1

	tests := []struct {
		name    string
		a, b    *int
		want    int
		decided bool
	}{
		{"both nil", nil, nil, 0, true},
		{"a nil", nil, &one, -1, true},
		{"b nil", &one, nil, 1, true},
		{"neither nil", &one, &one, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, decided := CompareNullable(tt.a, tt.b)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.decided, decided)
		})
	}
}

// =============================================================================
// CompareValue Tests
// =============================================================================

func TestCompareValue_Numbers(t *testing.T) {
	tests := []struct {
		name string
		a, b *int64
		want int
	}{
		{"both nil", nil, nil, 0},
		{"nil first", nil, domain.Ptr[int64](3), -1},
		{"nil last", domain.Ptr[int64](3), nil, 1},
		{"less", domain.Ptr[int64](1), domain.Ptr[int64](2), -1},
		{"greater", domain.Ptr[int64](2), domain.Ptr[int64](1), 1},
		{"equal", domain.Ptr[int64](2), domain.Ptr[int64](2), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareValue(tt.a, tt.b))
		})
	}
}

func TestCompareValue_Strings(t *testing.T) {
	assert.Equal(t, -1, CompareValue(domain.Ptr("Bar"), domain.Ptr("Foo")))
	assert.Equal(t, 1, CompareValue(domain.Ptr("bar"), domain.Ptr("Foo")), "comparison is case-sensitive")
	assert.Equal(t, 0, CompareValue(domain.Ptr("Foo"), domain.Ptr("Foo")))
	assert.Equal(t, -1, CompareValue(nil, domain.Ptr("")))
}

func TestCompareValue_Antisymmetric(t *testing.T) {
	values := []*string{nil, domain.Ptr(""), domain.Ptr("a"), domain.Ptr("B"), domain.Ptr("b"), domain.Ptr("ab")}

	for _, a := range values {
		for _, b := range values {
			assert.Equal(t, sign(CompareValue(a, b)), -sign(CompareValue(b, a)))
		}
	}
}

// =============================================================================
// CompareBool Tests
// =============================================================================

func TestCompareBool(t *testing.T) {
	yes, no := domain.Ptr(true), domain.Ptr(false)

	assert.Equal(t, 0, CompareBool(nil, nil))
	assert.Equal(t, -1, CompareBool(nil, no))
	assert.Equal(t, 1, CompareBool(no, nil))
	assert.Equal(t, -1, CompareBool(no, yes))
	assert.Equal(t, 1, CompareBool(yes, no))
	assert.Equal(t, 0, CompareBool(yes, domain.Ptr(true)))
}

// =============================================================================
// CompareAddress Tests
// =============================================================================

func TestCompareAddress(t *testing.T) {
	addr := func(zip, city, street, number string) *domain.Address {
		a := &domain.Address{}
		if zip != "" {
			a.ZipCode = domain.Ptr(zip)
		}
		if city != "" {
			a.City = domain.Ptr(city)
		}
		if street != "" {
			a.Street = domain.Ptr(street)
		}
		if number != "" {
			a.HouseNumber = domain.Ptr(number)
		}
		return a
	}

	tests := []struct {
		name string
		a, b *domain.Address
		want int
	}{
		{"both nil", nil, nil, 0},
		{"nil first", nil, addr("1", "", "", ""), -1},
		{"nil last", addr("1", "", "", ""), nil, 1},
		{"all fields nil are equal", &domain.Address{}, &domain.Address{}, 0},
		{"zip code decides", addr("10115", "Zeta", "Z", "9"), addr("20095", "Alpha", "A", "1"), -1},
		{"city after equal zip", addr("10115", "Berlin", "Z", "9"), addr("10115", "Aachen", "A", "1"), 1},
		{"street after equal city", addr("10115", "Berlin", "Astr", "9"), addr("10115", "Berlin", "Bstr", "1"), -1},
		{"house number last", addr("10115", "Berlin", "Astr", "2"), addr("10115", "Berlin", "Astr", "1"), 1},
		{"identical", addr("10115", "Berlin", "Astr", "2"), addr("10115", "Berlin", "Astr", "2"), 0},
		{"missing zip first", addr("", "Berlin", "", ""), addr("10115", "Aachen", "", ""), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareAddress(tt.a, tt.b))
			assert.Equal(t, -tt.want, CompareAddress(tt.b, tt.a))
		})
	}
}
