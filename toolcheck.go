package toolprobe

import (
	"fmt"
	"os/exec"
	"strings"
)

// ToolRequirement describes an external tool the configuration run needs
// before it can do anything useful.
//
// This covers the tools the engine invokes directly (the fixture
// interpreter) rather than the capabilities it probes for - those go through
// the harness so a cross-compiler or unusual flag set gets a fair trial.
//
// # Examples
//
// Required tool:
//
//	ToolRequirement{Name: "sh", Purpose: "probe fixture interpreter"}
//
// Tool with alternatives - any one found satisfies the requirement:
//
//	ToolRequirement{Name: "make", Alternatives: []string{"gmake"}, Purpose: "fixture builds"}
type ToolRequirement struct {
	// Name is the primary tool binary name.
	Name string

	// Alternatives are fallback binary names; finding any one of them
	// satisfies the requirement.
	Alternatives []string

	// Optional tools are still checked but never cause an error.
	Optional bool

	// Purpose is a human-readable reason the tool is needed, used in
	// error messages.
	Purpose string
}

// CheckToolAvailable reports whether a tool is on the system PATH.
func CheckToolAvailable(tool string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("%s not found in PATH", tool)
	}
	return nil
}

// CheckRequiredTools verifies a list of tool requirements, trying each
// requirement's alternatives in order. All missing required tools are
// reported in a single error so the user fixes them in one pass.
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missing []string

	for _, req := range requirements {
		found := CheckToolAvailable(req.Name) == nil
		if !found {
			for _, alt := range req.Alternatives {
				if CheckToolAvailable(alt) == nil {
					found = true
					break
				}
			}
		}
		if !found && !req.Optional {
			if req.Purpose != "" {
				missing = append(missing, fmt.Sprintf("%s (%s)", req.Name, req.Purpose))
			} else {
				missing = append(missing, req.Name)
			}
		}
	}

	switch len(missing) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("%s not found in PATH", missing[0])
	default:
		return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
}
