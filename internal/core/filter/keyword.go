package filter

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// =============================================================================
// ID Extraction
// =============================================================================

const (
	idPrefix = "#"
	idSuffix = "!"
)

// ExtractID parses an exact-id selector from a keyword.
//
// Two forms are recognised: a leading "#" ("#42") and a trailing "!"
// ("42!"). Splitting on the delimiter must yield exactly two parts, the
// outer one empty and the inner one a decimal integer. Every other keyword
// yields (0, false); a residue that does not parse is never reported as id 0.
func ExtractID(keyword string) (int64, bool) {
	var id, empty string

	switch {
	case strings.HasPrefix(keyword, idPrefix):
		parts := strings.Split(keyword, idPrefix)
		if len(parts) != 2 {
			return 0, false
		}
		empty, id = parts[0], parts[1]
	case strings.HasSuffix(keyword, idSuffix):
		parts := strings.Split(keyword, idSuffix)
		if len(parts) != 2 {
			return 0, false
		}
		id, empty = parts[0], parts[1]
	default:
		return 0, false
	}

	if empty != "" {
		return 0, false
	}

	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// =============================================================================
// Case-insensitive Matching
// =============================================================================

// ContainsFold reports whether substr is within s under Unicode case folding.
func ContainsFold(s, substr string) bool {
	folder := cases.Fold()
	return strings.Contains(folder.String(s), folder.String(substr))
}
