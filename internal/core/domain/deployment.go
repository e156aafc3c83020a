package domain

import (
	"errors"
	"strconv"
	"time"
)

// =============================================================================
// Deployment Errors
// =============================================================================

var (
	ErrInvalidID       = errors.New("record id must be positive")
	ErrCustomerMissing = errors.New("deployment customer is required")
	ErrCompanyMissing  = errors.New("customer company name is required")
)

// =============================================================================
// Deployment Type & Connection
// =============================================================================

// DeploymentType is the kind of terminal placed at a deployment.
type DeploymentType string

const (
	DeploymentTypeDDB      DeploymentType = "Das Digitale Brett"
	DeploymentTypeETV      DeploymentType = "Exposé TV"
	DeploymentTypeETVTouch DeploymentType = "Exposé TV touch"
)

// Connection is the internet uplink of a deployment.
type Connection string

const (
	ConnectionDSL Connection = "DSL"
	ConnectionLTE Connection = "LTE"
)

// =============================================================================
// Deployment
// =============================================================================

// Deployment is the placement of a terminal at a customer site.
type Deployment struct {
	ID         int64          `json:"id" yaml:"id"`
	Customer   Customer       `json:"customer" yaml:"customer"`
	Address    *Address       `json:"address" yaml:"address"`
	Type       DeploymentType `json:"type,omitempty" yaml:"type,omitempty"`
	Connection Connection     `json:"connection,omitempty" yaml:"connection,omitempty"`
	Annotation *string        `json:"annotation,omitempty" yaml:"annotation,omitempty"`
	Testing    *bool          `json:"testing,omitempty" yaml:"testing,omitempty"`
	Created    *time.Time     `json:"created,omitempty" yaml:"created,omitempty"`
}

// Validate checks the fields the record utilities rely on being present.
func (d *Deployment) Validate() error {
	if d.ID <= 0 {
		return ErrInvalidID
	}
	if d.Customer.ID <= 0 {
		return ErrCustomerMissing
	}
	if d.Customer.Company.Name == "" {
		return ErrCompanyMissing
	}
	return nil
}

// String returns the one-line form of the deployment.
func (d *Deployment) String() string {
	return DeploymentToString(d)
}

// DeploymentToString renders a deployment as "{id}: {address}".
func DeploymentToString(d *Deployment) string {
	return strconv.FormatInt(d.ID, 10) + ": " + AddressToString(d.Address)
}
