package filter

import (
	"slices"
	"testing"

	"github.com/artpar/hwdb/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func testDeployments() []*domain.Deployment {
	return []*domain.Deployment{
		{
			ID: 1,
			Customer: domain.Customer{ID: 1030020, Company: domain.Company{
				Name:         "Wohnungsbau Hannover",
				Abbreviation: domain.Ptr("WBH"),
			}},
			Address: &domain.Address{
				Street:      domain.Ptr("Goethestraße"),
				HouseNumber: domain.Ptr("12"),
				ZipCode:     domain.Ptr("30159"),
				City:        domain.Ptr("Hannover"),
			},
		},
		{
			ID:       42,
			Customer: domain.Customer{ID: 2000, Company: domain.Company{Name: "Acme"}},
			Address:  nil,
		},
		{
			ID:       7,
			Customer: domain.Customer{ID: 3000, Company: domain.Company{Name: "Beta Immobilien"}},
			Address:  &domain.Address{ZipCode: domain.Ptr("10115"), City: domain.Ptr("Berlin")},
		},
	}
}

func deploymentIDs(seq func(func(*domain.Deployment) bool)) []int64 {
	var result []int64
	for d := range seq {
		result = append(result, d.ID)
	}
	return result
}

func systemIDs(seq func(func(*domain.System) bool)) []int64 {
	var result []int64
	for s := range seq {
		result = append(result, s.ID)
	}
	return result
}

// =============================================================================
// MatchDeployment Tests
// =============================================================================

func TestMatchDeployment(t *testing.T) {
	d := testDeployments()[0]

	tests := []struct {
		name    string
		keyword string
		want    bool
	}{
		{"customer id", "10300", true},
		{"company name", "wohnungsbau", true},
		{"abbreviation", "wbh", true},
		{"street", "GOETHE", true},
		{"zip code", "3015", true},
		{"city", "hannover", true},
		{"formatted address", "12, 30159", true},
		{"no match", "berlin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchDeployment(d, tt.keyword))
		})
	}
}

func TestMatchDeployment_MissingOptionalFields(t *testing.T) {
	d := &domain.Deployment{ID: 5, Customer: domain.Customer{ID: 99, Company: domain.Company{Name: "Acme"}}}

	assert.True(t, MatchDeployment(d, "acme"))
	assert.False(t, MatchDeployment(d, "abbr"))
	assert.False(t, MatchDeployment(d, "Town"))
}

// =============================================================================
// Deployments Tests
// =============================================================================

func TestDeployments_EmptyKeywordYieldsAll(t *testing.T) {
	records := testDeployments()
	got := slices.Collect(Deployments(records, ""))

	assert.Equal(t, records, got)
	assert.Same(t, records[0], got[0], "records are yielded unchanged")
}

func TestDeployments_ExactID(t *testing.T) {
	records := testDeployments()

	assert.Equal(t, []int64{42}, deploymentIDs(Deployments(records, "#42")))
	assert.Equal(t, []int64{7}, deploymentIDs(Deployments(records, "7!")))
	assert.Empty(t, deploymentIDs(Deployments(records, "#999")))
}

func TestDeployments_ExactIDDoesNotTextMatch(t *testing.T) {
	records := testDeployments()

	// "#1" must not fall through to a substring match on customer id 1030020.
	assert.Equal(t, []int64{1}, deploymentIDs(Deployments(records, "#1")))
}

func TestDeployments_TextMatch(t *testing.T) {
	records := testDeployments()

	tests := []struct {
		name    string
		keyword string
		want    []int64
	}{
		{"company name", "acme", []int64{42}},
		{"city", "BERLIN", []int64{7}},
		{"shared substring keeps order", "n", []int64{1, 7}},
		{"plain number matches customer id", "00", []int64{1, 42, 7}},
		{"malformed selector falls back to text", "#4#2", nil},
		{"no match", "xyz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deploymentIDs(Deployments(records, tt.keyword)))
		})
	}
}

func TestDeployments_StopsEarly(t *testing.T) {
	records := testDeployments()

	var seen []int64
	for d := range Deployments(records, "") {
		seen = append(seen, d.ID)
		break
	}
	assert.Equal(t, []int64{1}, seen)
}

func TestDeployments_FreshCallRestarts(t *testing.T) {
	records := testDeployments()

	assert.Equal(t, []int64{1, 42, 7}, deploymentIDs(Deployments(records, "")))
	assert.Equal(t, []int64{1, 42, 7}, deploymentIDs(Deployments(records, "")))
}

// =============================================================================
// Systems Tests
// =============================================================================

func TestSystems(t *testing.T) {
	deployments := testDeployments()
	systems := []*domain.System{
		{ID: 100, Deployment: deployments[0]},
		{ID: 42},
		{ID: 101, Deployment: deployments[1]},
		{ID: 102},
	}

	t.Run("empty keyword yields all", func(t *testing.T) {
		assert.Equal(t, []int64{100, 42, 101, 102}, systemIDs(Systems(systems, "")))
	})

	t.Run("exact id uses the system id", func(t *testing.T) {
		assert.Equal(t, []int64{42}, systemIDs(Systems(systems, "#42")))
		assert.Equal(t, []int64{102}, systemIDs(Systems(systems, "102!")))
	})

	t.Run("text match uses the deployment", func(t *testing.T) {
		assert.Equal(t, []int64{101}, systemIDs(Systems(systems, "acme")))
		assert.Equal(t, []int64{100}, systemIDs(Systems(systems, "hannover")))
	})

	t.Run("undeployed systems never text match", func(t *testing.T) {
		// "42" would match system 42 by id text, but text mode only looks at deployments.
		assert.Empty(t, systemIDs(Systems(systems, "42")))
		// Deployment 42 has no address and renders as "-"; systems without deployment do not.
		assert.Equal(t, []int64{101}, systemIDs(Systems(systems, "-")))
	})
}
