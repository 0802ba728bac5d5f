package workflow

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// SandboxSecurityLevel is the coarse classification of a Code node's access
// permissions. The three levels are mutually exclusive and exhaustive over
// the two access booleans.
type SandboxSecurityLevel string

const (
	// SandboxStrict denies both network and file system access.
	SandboxStrict SandboxSecurityLevel = "strict"
	// SandboxRelaxed grants exactly one of network or file system access.
	SandboxRelaxed SandboxSecurityLevel = "relaxed"
	// SandboxOpen grants both network and file system access.
	SandboxOpen SandboxSecurityLevel = "open"
)

// String returns the string representation of the security level.
func (l SandboxSecurityLevel) String() string {
	return string(l)
}

// SandboxConfig is the typed configuration record of a Code node's execution
// limits. A limit of 0 means unlimited.
type SandboxConfig struct {
	NetworkAccess    bool `json:"network_access"`
	FileSystemAccess bool `json:"file_system_access"`
	MemoryLimitMB    int  `json:"memory_limit_mb" validate:"min=0,max=1024"`
	TimeLimitMS      int  `json:"time_limit_ms" validate:"min=0,max=60000"`
}

var sandboxValidate = validator.New(validator.WithRequiredStructEnabled())

// SecurityLevel classifies the sandbox from its two access booleans alone.
func (c SandboxConfig) SecurityLevel() SandboxSecurityLevel {
	switch {
	case c.NetworkAccess && c.FileSystemAccess:
		return SandboxOpen
	case c.NetworkAccess || c.FileSystemAccess:
		return SandboxRelaxed
	default:
		return SandboxStrict
	}
}

// ValidateSandboxConfig returns a list of limit violations. An empty list
// means the config can be saved and executed. Violations block saving; they
// are returned as data rather than raised.
func ValidateSandboxConfig(c SandboxConfig) []string {
	err := sandboxValidate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.StructField() {
		case "MemoryLimitMB":
			violations = append(violations,
				fmt.Sprintf("memory limit must be between 0 and 1024 MB, got %d", c.MemoryLimitMB))
		case "TimeLimitMS":
			violations = append(violations,
				fmt.Sprintf("time limit must be between 0 and 60000 ms, got %d", c.TimeLimitMS))
		default:
			violations = append(violations, fe.Error())
		}
	}
	return violations
}

// IsSandboxSecure reports whether the sandbox is at the strict level.
func IsSandboxSecure(c SandboxConfig) bool {
	return c.SecurityLevel() == SandboxStrict
}
