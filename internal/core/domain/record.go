package domain

// =============================================================================
// Sort Keys
// =============================================================================

// The accessors below expose the sortable keys of a record. A system
// borrows every key except its id from its deployment; without a
// deployment it reports customer id 0, an empty company name, and nil
// address and testing flag.

// RecordID returns the deployment id.
func (d *Deployment) RecordID() int64 { return d.ID }

// CustomerID returns the id of the owning customer.
func (d *Deployment) CustomerID() int64 { return d.Customer.ID }

// CompanyName returns the name of the owning customer's company.
func (d *Deployment) CompanyName() string { return d.Customer.Company.Name }

// Location returns the deployment address.
func (d *Deployment) Location() *Address { return d.Address }

// IsTesting returns the testing flag.
func (d *Deployment) IsTesting() *bool { return d.Testing }

// RecordID returns the system id.
func (s *System) RecordID() int64 { return s.ID }

// CustomerID returns the customer id of the system's deployment.
func (s *System) CustomerID() int64 {
	if s.Deployment == nil {
		return 0
	}
	return s.Deployment.CustomerID()
}

// CompanyName returns the company name of the system's deployment.
func (s *System) CompanyName() string {
	if s.Deployment == nil {
		return ""
	}
	return s.Deployment.CompanyName()
}

// Location returns the address of the system's deployment.
func (s *System) Location() *Address {
	if s.Deployment == nil {
		return nil
	}
	return s.Deployment.Address
}

// IsTesting returns the testing flag of the system's deployment.
func (s *System) IsTesting() *bool {
	if s.Deployment == nil {
		return nil
	}
	return s.Deployment.Testing
}
