// Package validation provides pure validation functions for API handlers.
//
// All functions are pure (no I/O, no side effects). Each returns the parsed
// value together with a message that is empty when the input is valid.
//
// # Functions
//
//   - ParseRecordID: Parse a path id into a positive record id
//   - ParseDescending: Parse the optional desc query parameter
//   - ParseIDList: Parse repeated or comma separated id filters
//   - ParseFlag: Parse an optional boolean filter
//   - SplitList: Flatten repeated or comma separated filter values
//
// # Usage
//
// The API handlers use these functions before touching the store:
//
//	if id, msg := validation.ParseRecordID(chi.URLParam(r, "id")); msg != "" {
//	    // Return 400 Bad Request with msg
//	}
package validation
