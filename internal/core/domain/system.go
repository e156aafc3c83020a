package domain

import (
	"strconv"
	"time"
)

// =============================================================================
// System
// =============================================================================

// System is a managed terminal, optionally placed at a deployment.
//
// Only ID and Deployment take part in sorting and filtering; the remaining
// fields are descriptive metadata carried through unchanged.
type System struct {
	ID              int64       `json:"id" yaml:"id"`
	Group           int64       `json:"group" yaml:"group"`
	Deployment      *Deployment `json:"deployment,omitempty" yaml:"-"`
	Dataset         *int64      `json:"dataset,omitempty" yaml:"dataset,omitempty"`
	OpenVPN         *int64      `json:"openvpn,omitempty" yaml:"openvpn,omitempty"`
	IPv6Address     *string     `json:"ipv6address,omitempty" yaml:"ipv6address,omitempty"`
	PubKey          *string     `json:"pubkey,omitempty" yaml:"pubkey,omitempty"`
	Created         time.Time   `json:"created" yaml:"created"`
	Configured      *time.Time  `json:"configured,omitempty" yaml:"configured,omitempty"`
	Fitted          bool        `json:"fitted" yaml:"fitted"`
	OperatingSystem string      `json:"operatingSystem" yaml:"operatingSystem"`
	Monitor         *bool       `json:"monitor,omitempty" yaml:"monitor,omitempty"`
	SerialNumber    *string     `json:"serialNumber,omitempty" yaml:"serialNumber,omitempty"`
	Model           *string     `json:"model,omitempty" yaml:"model,omitempty"`
	LastSync        *time.Time  `json:"lastSync,omitempty" yaml:"lastSync,omitempty"`
}

// Validate checks that the system carries a usable id.
func (s *System) Validate() error {
	if s.ID <= 0 {
		return ErrInvalidID
	}
	return nil
}

// SystemToString renders a system as "{id}" or "{id} @ {deployment}" when deployed.
func SystemToString(s *System) string {
	id := strconv.FormatInt(s.ID, 10)
	if s.Deployment == nil {
		return id
	}
	return id + " @ " + DeploymentToString(s.Deployment)
}
