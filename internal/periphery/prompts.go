package periphery

import (
	"regexp"

	"periphery-mcp/internal/execx"
)

// setupScript is the fixed expect/respond table for `periphery scan --setup`.
// Order matters: the specific questions come before the generic yes/no and
// selection patterns, so a "save configuration" prompt is answered "y" even
// though it also matches the generic yes/no rule.
//
// The empty fallback sends a bare Enter, taking the wizard's own default.
// The caller surfaces a warning whenever the fallback fires: an assumed
// default can misconfigure the project without failing the wizard.
func setupScript() execx.Script {
	return execx.Script{
		Rules: []execx.Rule{
			{Pattern: regexp.MustCompile(`(?i)delimit choices`), Response: "1"},
			{Pattern: regexp.MustCompile(`(?i)objective-c`), Response: "n"},
			{Pattern: regexp.MustCompile(`(?i)public.+declarations`), Response: "n"},
			{Pattern: regexp.MustCompile(`(?i)save configuration`), Response: "y"},
			{Pattern: regexp.MustCompile(`(?i)\.periphery\.yml`), Response: "y"},
			{Pattern: regexp.MustCompile(`(?i)\(y\)es/\(n\)o`), Response: "n"},
			{Pattern: regexp.MustCompile(`(?i)select`), Response: "1"},
		},
		Fallback: "",
	}
}
