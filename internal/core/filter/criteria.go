package filter

import (
	"iter"
	"slices"
	"strings"

	"github.com/artpar/hwdb/internal/core/domain"
)

// =============================================================================
// Composition
// =============================================================================

// Where yields the elements of seq accepted by match, in order.
func Where[T any](seq iter.Seq[T], match func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if match(v) && !yield(v) {
				return
			}
		}
	}
}

// =============================================================================
// Deployment Criteria
// =============================================================================

// DeploymentCriteria selects deployments by structured fields.
//
// Unset fields do not restrict. Set fields are combined with AND; a list
// field accepts a deployment matching any of its values.
type DeploymentCriteria struct {
	IDs         []int64
	Customers   []int64
	Testing     *bool
	Types       []domain.DeploymentType
	Connections []domain.Connection

	// Systems keeps deployments hosting one of these systems, either as
	// their deployment or as their dataset. It needs the system listing,
	// see Link; unlinked criteria with Systems set match nothing.
	Systems []int64

	hosting map[int64]struct{}
}

// IsZero reports whether the criteria accept every deployment.
func (c DeploymentCriteria) IsZero() bool {
	return len(c.IDs) == 0 && len(c.Customers) == 0 && c.Testing == nil &&
		len(c.Types) == 0 && len(c.Connections) == 0 && len(c.Systems) == 0
}

// Link resolves the Systems field against a system listing.
func (c DeploymentCriteria) Link(systems []*domain.System) DeploymentCriteria {
	if len(c.Systems) == 0 {
		return c
	}

	c.hosting = make(map[int64]struct{})
	for _, s := range systems {
		if !slices.Contains(c.Systems, s.ID) {
			continue
		}
		if s.Deployment != nil {
			c.hosting[s.Deployment.ID] = struct{}{}
		}
		if s.Dataset != nil {
			c.hosting[*s.Dataset] = struct{}{}
		}
	}
	return c
}

// Match reports whether d satisfies every set criterion.
// A deployment without a testing flag counts as not testing.
func (c DeploymentCriteria) Match(d *domain.Deployment) bool {
	if len(c.IDs) > 0 && !slices.Contains(c.IDs, d.ID) {
		return false
	}
	if len(c.Customers) > 0 && !slices.Contains(c.Customers, d.Customer.ID) {
		return false
	}
	if c.Testing != nil && isTesting(d) != *c.Testing {
		return false
	}
	if len(c.Types) > 0 && !slices.Contains(c.Types, d.Type) {
		return false
	}
	if len(c.Connections) > 0 && !slices.Contains(c.Connections, d.Connection) {
		return false
	}
	if len(c.Systems) > 0 {
		if _, ok := c.hosting[d.ID]; !ok {
			return false
		}
	}
	return true
}

func isTesting(d *domain.Deployment) bool {
	return d.Testing != nil && *d.Testing
}

// =============================================================================
// System Criteria
// =============================================================================

// SystemCriteria selects systems by structured fields, with the same
// combination rules as DeploymentCriteria.
type SystemCriteria struct {
	IDs              []int64
	Customers        []int64 // customer of the system's deployment
	Deployments      []int64
	Datasets         []int64
	Configured       *bool
	Deployed         *bool
	Fitted           *bool
	OperatingSystems []string // compared ignoring case
}

// IsZero reports whether the criteria accept every system.
func (c SystemCriteria) IsZero() bool {
	return len(c.IDs) == 0 && len(c.Customers) == 0 && len(c.Deployments) == 0 &&
		len(c.Datasets) == 0 && c.Configured == nil && c.Deployed == nil &&
		c.Fitted == nil && len(c.OperatingSystems) == 0
}

// Match reports whether s satisfies every set criterion. Undeployed systems
// never match a customer or deployment criterion.
func (c SystemCriteria) Match(s *domain.System) bool {
	if len(c.IDs) > 0 && !slices.Contains(c.IDs, s.ID) {
		return false
	}
	if len(c.Customers) > 0 && (s.Deployment == nil || !slices.Contains(c.Customers, s.Deployment.Customer.ID)) {
		return false
	}
	if len(c.Deployments) > 0 && (s.Deployment == nil || !slices.Contains(c.Deployments, s.Deployment.ID)) {
		return false
	}
	if len(c.Datasets) > 0 && (s.Dataset == nil || !slices.Contains(c.Datasets, *s.Dataset)) {
		return false
	}
	if c.Configured != nil && (s.Configured != nil) != *c.Configured {
		return false
	}
	if c.Deployed != nil && (s.Deployment != nil) != *c.Deployed {
		return false
	}
	if c.Fitted != nil && s.Fitted != *c.Fitted {
		return false
	}
	if len(c.OperatingSystems) > 0 && !slices.ContainsFunc(c.OperatingSystems, func(os string) bool {
		return strings.EqualFold(os, s.OperatingSystem)
	}) {
		return false
	}
	return true
}
