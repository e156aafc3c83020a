// Package filter provides pure keyword filtering of inventory listings.
//
// A keyword either selects a single record by id or is matched as free
// text against the customer and address of a deployment.
//
// # Keyword Syntax
//
//   - "" matches every record
//   - "#42" or "42!" matches only the record with id 42
//   - anything else is a case-insensitive substring of the customer id,
//     company name, company abbreviation or one-line address
//
// # Criteria
//
// DeploymentCriteria and SystemCriteria select records by structured
// fields (ids, customer, type, connection, testing, deployed, configured,
// fitted, operating system). Compose them with a keyword filter using Where:
//
//	seq := filter.Where(filter.Systems(systems, keyword), criteria.Match)
//
// # Usage
//
// The filters return lazy sequences that preserve input order:
//
//	for d := range filter.Deployments(deployments, keyword) {
//	    rows = append(rows, d)
//	}
package filter
