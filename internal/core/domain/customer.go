package domain

import "fmt"

// =============================================================================
// Company & Customer
// =============================================================================

// Company is the legal entity behind a customer.
type Company struct {
	Name         string  `json:"name" yaml:"name"`
	Abbreviation *string `json:"abbreviation,omitempty" yaml:"abbreviation,omitempty"`
}

// Customer is a customer account owning deployments.
type Customer struct {
	ID      int64   `json:"id" yaml:"id"`
	Company Company `json:"company" yaml:"company"`
}

// CustomerToString renders a customer as "{company name} ({id})".
func CustomerToString(c *Customer) string {
	if c == nil {
		return Placeholder
	}
	return fmt.Sprintf("%s (%d)", c.Company.Name, c.ID)
}
