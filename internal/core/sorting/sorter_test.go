package sorting

import (
	"slices"
	"testing"

	"github.com/artpar/hwdb/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDeployments() []*domain.Deployment {
	return []*domain.Deployment{
		{
			ID:       3,
			Customer: domain.Customer{ID: 200, Company: domain.Company{Name: "Beta"}},
			Address:  &domain.Address{ZipCode: domain.Ptr("30159"), City: domain.Ptr("Hannover")},
			Testing:  domain.Ptr(true),
		},
		{
			ID:       1,
			Customer: domain.Customer{ID: 300, Company: domain.Company{Name: "alpha"}},
			Address:  nil,
			Testing:  nil,
		},
		{
			ID:       2,
			Customer: domain.Customer{ID: 100, Company: domain.Company{Name: "Gamma"}},
			Address:  &domain.Address{ZipCode: domain.Ptr("10115"), City: domain.Ptr("Berlin")},
			Testing:  domain.Ptr(false),
		},
	}
}

func ids[T Record](records []T) []int64 {
	result := make([]int64, 0, len(records))
	for _, r := range records {
		result = append(result, r.RecordID())
	}
	return result
}

// =============================================================================
// ParseField Tests
// =============================================================================

func TestParseField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Field
		ok    bool
	}{
		{"id", "id", FieldID, true},
		{"upper case", "ID", FieldID, true},
		{"mixed case", "CiD", FieldCID, true},
		{"customer", "customer", FieldCustomer, true},
		{"address", "Address", FieldAddress, true},
		{"testing", "TESTING", FieldTesting, true},
		{"empty", "", "", false},
		{"unknown", "bogus", "", false},
		{"legacy tid", "tid", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseField(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

// =============================================================================
// GetSorter Tests
// =============================================================================

func TestGetSorter_UnknownField(t *testing.T) {
	for _, descending := range []bool{false, true} {
		assert.Nil(t, GetSorter[*domain.Deployment]("", descending))
		assert.Nil(t, GetSorter[*domain.Deployment]("bogus", descending))
		assert.Nil(t, GetSorter[*domain.System]("bogus", descending))
	}
}

func TestGetSorter_ByID(t *testing.T) {
	records := testDeployments()

	asc := GetSorter[*domain.Deployment]("id", false)
	require.NotNil(t, asc)
	slices.SortFunc(records, asc)
	assert.Equal(t, []int64{1, 2, 3}, ids(records))

	desc := GetSorter[*domain.Deployment]("ID", true)
	require.NotNil(t, desc)
	slices.SortFunc(records, desc)
	assert.Equal(t, []int64{3, 2, 1}, ids(records))
}

func TestGetSorter_Fields(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		descending bool
		want       []int64
	}{
		{"customer id ascending", "cid", false, []int64{2, 3, 1}},
		{"customer id descending", "cid", true, []int64{1, 3, 2}},
		{"customer name is case-sensitive", "customer", false, []int64{3, 2, 1}},
		{"customer name descending", "customer", true, []int64{1, 2, 3}},
		{"address nil first", "address", false, []int64{1, 2, 3}},
		{"address descending", "address", true, []int64{3, 2, 1}},
		{"testing nil first", "testing", false, []int64{1, 2, 3}},
		{"testing descending", "testing", true, []int64{3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := testDeployments()
			compare := GetSorter[*domain.Deployment](tt.field, tt.descending)
			require.NotNil(t, compare)
			slices.SortStableFunc(records, compare)
			assert.Equal(t, tt.want, ids(records))
		})
	}
}

func TestGetSorter_DescendingInvertsSign(t *testing.T) {
	records := testDeployments()

	for _, field := range Fields {
		asc := GetSorter[*domain.Deployment](string(field), false)
		desc := GetSorter[*domain.Deployment](string(field), true)
		for _, a := range records {
			for _, b := range records {
				assert.Equal(t, sign(asc(a, b)), -sign(desc(a, b)), "field %s", field)
			}
		}
	}
}

func TestGetSorter_Systems(t *testing.T) {
	deployments := testDeployments()
	systems := []*domain.System{
		{ID: 20, Deployment: deployments[0]},
		{ID: 10},
		{ID: 30, Deployment: deployments[2]},
	}

	t.Run("by own id", func(t *testing.T) {
		records := slices.Clone(systems)
		slices.SortFunc(records, GetSorter[*domain.System]("id", false))
		assert.Equal(t, []int64{10, 20, 30}, ids(records))
	})

	t.Run("undeployed system has customer id zero", func(t *testing.T) {
		records := slices.Clone(systems)
		slices.SortFunc(records, GetSorter[*domain.System]("cid", false))
		assert.Equal(t, []int64{10, 30, 20}, ids(records))
	})

	t.Run("undeployed system has nil address", func(t *testing.T) {
		records := slices.Clone(systems)
		slices.SortFunc(records, GetSorter[*domain.System]("address", true))
		assert.Equal(t, []int64{20, 30, 10}, ids(records))
	})
}

// =============================================================================
// Sort Tests
// =============================================================================

func TestSort(t *testing.T) {
	t.Run("applies comparator", func(t *testing.T) {
		records := testDeployments()
		assert.True(t, Sort(records, "id", true))
		assert.Equal(t, []int64{3, 2, 1}, ids(records))
	})

	t.Run("unknown field keeps order", func(t *testing.T) {
		records := testDeployments()
		assert.False(t, Sort(records, "deployed", false))
		assert.Equal(t, []int64{3, 1, 2}, ids(records))
	})

	t.Run("stable for equal keys", func(t *testing.T) {
		records := []*domain.Deployment{
			{ID: 1, Testing: domain.Ptr(true)},
			{ID: 2, Testing: domain.Ptr(true)},
			{ID: 3, Testing: domain.Ptr(false)},
		}
		assert.True(t, Sort(records, "testing", false))
		assert.Equal(t, []int64{3, 1, 2}, ids(records))
	})
}
