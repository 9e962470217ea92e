package periphery

import (
	"encoding/json"
	"strconv"
	"strings"
)

// rawEntry is one record of Periphery's JSON output. Fields beyond the
// three we map are dropped.
type rawEntry struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ParseIssues decodes Periphery's machine-readable scan output. The tool
// has emitted three shapes over its releases: a bare array, an object with
// a "results" array, and a single object; all three are accepted.
//
// Entries missing kind, name, or location are skipped rather than failing
// the whole scan. An undecodable document returns a ParseError carrying
// the leading raw lines for diagnostics.
func ParseIssues(data []byte, limit int) ([]Issue, any, *ToolError) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, &ToolError{
			Code:    CodeParseError,
			Summary: "failed to parse scan output as JSON: " + err.Error(),
			LogTail: headLines(string(data), limit),
		}
	}

	var entries []json.RawMessage
	switch v := doc.(type) {
	case []any:
		entries = decodeArray(data)
	case map[string]any:
		if _, ok := v["results"]; ok {
			var wrapper struct {
				Results []json.RawMessage `json:"results"`
			}
			if err := json.Unmarshal(data, &wrapper); err == nil {
				entries = wrapper.Results
			}
		} else {
			entries = []json.RawMessage{json.RawMessage(data)}
		}
	}

	issues := make([]Issue, 0, len(entries))
	for _, raw := range entries {
		var e rawEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		if e.Kind == "" || e.Name == "" || e.Location == "" {
			continue
		}
		file, line := splitLocation(e.Location)
		issues = append(issues, Issue{
			Kind:       e.Kind,
			Identifier: e.Name,
			File:       file,
			Line:       line,
		})
	}
	return issues, doc, nil
}

func decodeArray(data []byte) []json.RawMessage {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil
	}
	return arr
}

// splitLocation breaks "path/to/File.swift:39:18" into file and line.
// Paths may themselves contain colons only in theory; Periphery always
// appends ":line:column", so splitting from the right is safe. A location
// with no line part maps to line 1.
func splitLocation(loc string) (string, int) {
	parts := strings.Split(loc, ":")
	if len(parts) >= 3 {
		if line, err := strconv.Atoi(parts[len(parts)-2]); err == nil {
			return strings.Join(parts[:len(parts)-2], ":"), line
		}
	}
	if len(parts) == 2 {
		if line, err := strconv.Atoi(parts[1]); err == nil {
			return parts[0], line
		}
	}
	return loc, 1
}

// LogTail returns the last limit non-empty lines of text, order preserved.
func LogTail(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimRight(l, "\r"))
		}
	}
	if len(lines) > limit {
		lines = lines[len(lines)-limit:]
	}
	return lines
}

// CapLines keeps the last limit entries of an already-built tail. Branches
// that append a trailing error line to a capped tail re-cap through here so
// no result ever exceeds the configured tail length.
func CapLines(lines []string, limit int) []string {
	if limit > 0 && len(lines) > limit {
		return lines[len(lines)-limit:]
	}
	return lines
}

// headLines returns the first limit non-empty lines of text.
func headLines(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines = append(lines, strings.TrimRight(l, "\r"))
		if len(lines) == limit {
			break
		}
	}
	return lines
}

// firstNonEmptyLine is used for one-line failure summaries.
func firstNonEmptyLine(text string) string {
	for _, l := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(l); s != "" {
			return s
		}
	}
	return ""
}

// summarize caps a summary line the way the wire format expects.
func summarize(text string) string {
	s := firstNonEmptyLine(text)
	if s == "" {
		s = "scan failed"
	}
	if len(s) > 250 {
		s = s[:250]
	}
	return s
}
