package validation

import (
	"strconv"
	"strings"
)

// =============================================================================
// Query Validation Functions
// =============================================================================

// ParseRecordID parses a deployment or system id taken from a request path.
// Returns the id and an empty message, or zero and the reason it was rejected.
//
// Example:
//
//	id, msg := ParseRecordID("42") // 42, ""
//	id, msg = ParseRecordID("#42") // 0, "id must be a positive integer"
func ParseRecordID(raw string) (id int64, message string) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, "id must be a positive integer"
	}
	return id, ""
}

// ParseDescending parses the desc query parameter.
// An empty value means ascending. Accepts the forms of strconv.ParseBool.
func ParseDescending(raw string) (descending bool, message string) {
	if raw == "" {
		return false, ""
	}
	d, err := strconv.ParseBool(raw)
	if err != nil {
		return false, "desc must be a boolean"
	}
	return d, ""
}

// SplitList flattens repeated and comma separated query values, trimming
// whitespace and dropping empty items.
//
// Example:
//
//	SplitList([]string{"1,2", " 3 ", ""}) // ["1" "2" "3"]
func SplitList(values []string) []string {
	var items []string
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
	}
	return items
}

// ParseIDList parses the repeated or comma separated ids of query
// parameter name. No values yields nil.
func ParseIDList(name string, values []string) (ids []int64, message string) {
	for _, raw := range SplitList(values) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, name + " must be a list of positive integers"
		}
		ids = append(ids, id)
	}
	return ids, ""
}

// ParseFlag parses an optional boolean query parameter. An empty value
// leaves it unset (nil).
func ParseFlag(name, raw string) (flag *bool, message string) {
	if raw == "" {
		return nil, ""
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, name + " must be a boolean"
	}
	return &b, ""
}
