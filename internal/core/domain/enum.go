package domain

import "strings"

// =============================================================================
// Enumerations
// =============================================================================

var deploymentTypes = map[string]DeploymentType{
	"DDB":       DeploymentTypeDDB,
	"ETV":       DeploymentTypeETV,
	"ETV_TOUCH": DeploymentTypeETVTouch,
}

var connections = map[string]Connection{
	"DSL": ConnectionDSL,
	"LTE": ConnectionLTE,
}

// Known operating systems by short name.
var operatingSystems = map[string]string{
	"ARCH_LINUX":                "Arch Linux",
	"WINDOWS_XP":                "Windows XP",
	"WINDOWS_XP_EMBEDDED":       "Windows XP Embedded",
	"WINDOWS_EMBEDDED_STANDARD": "Windows Embedded Standard",
	"WINDOWS7":                  "Windows 7",
	"WINDOWS7_EMBEDDED":         "Windows 7 Embedded",
	"WINDOWS8":                  "Windows 8",
	"WINDOWS81":                 "Windows 8.1",
	"WINDOWS10":                 "Windows 10",
}

// ParseDeploymentType accepts a type's value ("Exposé TV") or short name
// ("ETV"), ignoring case.
func ParseDeploymentType(s string) (DeploymentType, bool) {
	return parseEnum(s, deploymentTypes)
}

// ParseConnection accepts "DSL" or "LTE", ignoring case.
func ParseConnection(s string) (Connection, bool) {
	return parseEnum(s, connections)
}

// ParseOperatingSystem accepts an operating system's name ("Windows 7") or
// short name ("WINDOWS7"), ignoring case, and returns the name.
func ParseOperatingSystem(s string) (string, bool) {
	return parseEnum(s, operatingSystems)
}

func parseEnum[T ~string](s string, values map[string]T) (T, bool) {
	s = strings.TrimSpace(s)
	for name, v := range values {
		if strings.EqualFold(s, name) || strings.EqualFold(s, string(v)) {
			return v, true
		}
	}
	var zero T
	return zero, false
}
