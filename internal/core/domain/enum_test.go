package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDeploymentType(t *testing.T) {
	tests := []struct {
		in     string
		want   DeploymentType
		wantOK bool
	}{
		{"Exposé TV", DeploymentTypeETV, true},
		{"exposé tv touch", DeploymentTypeETVTouch, true},
		{"DDB", DeploymentTypeDDB, true},
		{"etv_touch", DeploymentTypeETVTouch, true},
		{" ETV ", DeploymentTypeETV, true},
		{"Kiosk", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDeploymentType(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseConnection(t *testing.T) {
	got, ok := ParseConnection("lte")
	assert.True(t, ok)
	assert.Equal(t, ConnectionLTE, got)

	_, ok = ParseConnection("ISDN")
	assert.False(t, ok)
}

func TestParseOperatingSystem(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Arch Linux", "Arch Linux", true},
		{"arch linux", "Arch Linux", true},
		{"WINDOWS81", "Windows 8.1", true},
		{"Windows 7 Embedded", "Windows 7 Embedded", true},
		{"BeOS", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseOperatingSystem(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
