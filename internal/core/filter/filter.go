package filter

import (
	"iter"
	"strconv"

	"github.com/artpar/hwdb/internal/core/domain"
)

// =============================================================================
// Free-text Match
// =============================================================================

// MatchDeployment reports whether keyword is a case-insensitive substring of
// the deployment's customer id, company name, company abbreviation or
// one-line address.
func MatchDeployment(d *domain.Deployment, keyword string) bool {
	if ContainsFold(strconv.FormatInt(d.Customer.ID, 10), keyword) {
		return true
	}

	company := d.Customer.Company
	if company.Name != "" && ContainsFold(company.Name, keyword) {
		return true
	}
	if company.Abbreviation != nil && ContainsFold(*company.Abbreviation, keyword) {
		return true
	}

	return ContainsFold(domain.AddressToString(d.Address), keyword)
}

// =============================================================================
// Keyword Filters
// =============================================================================

// Deployments yields the deployments matching keyword in their original order.
//
// An empty keyword yields every deployment. An id selector (see ExtractID)
// yields only deployments with that id. Any other keyword is matched with
// MatchDeployment.
func Deployments(deployments []*domain.Deployment, keyword string) iter.Seq[*domain.Deployment] {
	match := deploymentMatcher(keyword)
	return func(yield func(*domain.Deployment) bool) {
		for _, d := range deployments {
			if match(d) && !yield(d) {
				return
			}
		}
	}
}

// Systems yields the systems matching keyword in their original order.
//
// An empty keyword yields every system. An id selector matches the
// system's own id, whether or not it is deployed. Any other keyword is
// matched against the system's deployment; undeployed systems never match.
func Systems(systems []*domain.System, keyword string) iter.Seq[*domain.System] {
	match := systemMatcher(keyword)
	return func(yield func(*domain.System) bool) {
		for _, s := range systems {
			if match(s) && !yield(s) {
				return
			}
		}
	}
}

func deploymentMatcher(keyword string) func(*domain.Deployment) bool {
	if keyword == "" {
		return func(*domain.Deployment) bool { return true }
	}
	if id, ok := ExtractID(keyword); ok {
		return func(d *domain.Deployment) bool { return d.ID == id }
	}
	return func(d *domain.Deployment) bool { return MatchDeployment(d, keyword) }
}

func systemMatcher(keyword string) func(*domain.System) bool {
	if keyword == "" {
		return func(*domain.System) bool { return true }
	}
	if id, ok := ExtractID(keyword); ok {
		return func(s *domain.System) bool { return s.ID == id }
	}
	return func(s *domain.System) bool {
		return s.Deployment != nil && MatchDeployment(s.Deployment, keyword)
	}
}
