// Package snapshot reads inventory snapshots exported by the data-retrieval layer.
//
// A snapshot is a YAML (or JSON) document listing deployments and systems.
// Systems reference their deployment by id; Resolve links them up.
package snapshot

import (
	"errors"
	"fmt"
	"os"

	"github.com/artpar/hwdb/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrDuplicateID is returned when two records of one kind share an id.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrUnknownDeployment is returned when a system references a missing deployment.
	ErrUnknownDeployment = errors.New("system references unknown deployment")

	// ErrInvalidRecord is returned when a record fails validation.
	ErrInvalidRecord = errors.New("invalid record")
)

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot is the raw content of an inventory export.
type Snapshot struct {
	Deployments []domain.Deployment `yaml:"deployments"`
	Systems     []SystemRef         `yaml:"systems"`
}

// SystemRef is a system whose deployment is given by id.
type SystemRef struct {
	domain.System `yaml:",inline"`
	DeploymentID  *int64 `yaml:"deployment,omitempty"`
}

// Parse decodes a snapshot document.
func Parse(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &s, nil
}

// Load reads and decodes the snapshot file at path.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return Parse(data)
}

// Resolve validates the snapshot and links systems to their deployments.
// The returned slices keep the snapshot order.
func (s *Snapshot) Resolve() ([]*domain.Deployment, []*domain.System, error) {
	deployments := make([]*domain.Deployment, 0, len(s.Deployments))
	byID := make(map[int64]*domain.Deployment, len(s.Deployments))

	for i := range s.Deployments {
		d := &s.Deployments[i]
		if err := d.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%w: deployment %d: %w", ErrInvalidRecord, d.ID, err)
		}
		if _, exists := byID[d.ID]; exists {
			return nil, nil, fmt.Errorf("%w: deployment %d", ErrDuplicateID, d.ID)
		}
		byID[d.ID] = d
		deployments = append(deployments, d)
	}

	systems := make([]*domain.System, 0, len(s.Systems))
	seen := make(map[int64]struct{}, len(s.Systems))

	for i := range s.Systems {
		ref := &s.Systems[i]
		sys := ref.System
		if err := sys.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%w: system %d: %w", ErrInvalidRecord, sys.ID, err)
		}
		if _, exists := seen[sys.ID]; exists {
			return nil, nil, fmt.Errorf("%w: system %d", ErrDuplicateID, sys.ID)
		}
		seen[sys.ID] = struct{}{}

		if ref.DeploymentID != nil {
			d, ok := byID[*ref.DeploymentID]
			if !ok {
				return nil, nil, fmt.Errorf("%w: system %d, deployment %d", ErrUnknownDeployment, sys.ID, *ref.DeploymentID)
			}
			sys.Deployment = d
		}
		systems = append(systems, &sys)
	}

	return deployments, systems, nil
}
