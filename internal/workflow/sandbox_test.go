package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSandboxSecurityLevel_Partition(t *testing.T) {
	tests := []struct {
		name       string
		network    bool
		filesystem bool
		expected   SandboxSecurityLevel
	}{
		{"both denied", false, false, SandboxStrict},
		{"network only", true, false, SandboxRelaxed},
		{"filesystem only", false, true, SandboxRelaxed},
		{"both granted", true, true, SandboxOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := SandboxConfig{NetworkAccess: tt.network, FileSystemAccess: tt.filesystem}
			assert.Equal(t, tt.expected, config.SecurityLevel())
			assert.Equal(t, tt.expected == SandboxStrict, IsSandboxSecure(config))
		})
	}
}

func TestSandboxSecurityLevel_IgnoresLimits(t *testing.T) {
	// The level is a function of the two access booleans alone.
	a := SandboxConfig{NetworkAccess: true, MemoryLimitMB: 0, TimeLimitMS: 0}
	b := SandboxConfig{NetworkAccess: true, MemoryLimitMB: 512, TimeLimitMS: 5000}

	assert.Equal(t, a.SecurityLevel(), b.SecurityLevel())
	assert.Equal(t, SandboxRelaxed, a.SecurityLevel())
	assert.False(t, IsSandboxSecure(a))
}

func TestValidateSandboxConfig(t *testing.T) {
	tests := []struct {
		name       string
		config     SandboxConfig
		violations int
	}{
		{"defaults are valid", SandboxConfig{}, 0},
		{"unlimited is zero", SandboxConfig{MemoryLimitMB: 0, TimeLimitMS: 0}, 0},
		{"upper bounds", SandboxConfig{MemoryLimitMB: 1024, TimeLimitMS: 60000}, 0},
		{"memory too large", SandboxConfig{MemoryLimitMB: 2048}, 1},
		{"memory negative", SandboxConfig{MemoryLimitMB: -1}, 1},
		{"time too large", SandboxConfig{TimeLimitMS: 120000}, 1},
		{"both out of range", SandboxConfig{MemoryLimitMB: 9999, TimeLimitMS: -5}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, ValidateSandboxConfig(tt.config), tt.violations)
		})
	}
}
