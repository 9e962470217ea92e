package format_test

import (
	"strings"
	"testing"

	"periphery-mcp/internal/format"
	"periphery-mcp/internal/periphery"
)

var sample = []periphery.Issue{
	{Kind: "function", Identifier: "unusedHelper()", File: "/proj/Helper.swift", Line: 39},
	{Kind: "class", Identifier: "DeadViewController", File: "/proj/Dead.swift", Line: 7},
}

func TestIssueTable_ASCII(t *testing.T) {
	out := format.IssueTable(sample, format.ASCII)
	for _, want := range []string{"unusedHelper()", "DeadViewController", "39", "/proj/Dead.swift"} {
		if !strings.Contains(out, want) {
			t.Errorf("ASCII table missing %q:\n%s", want, out)
		}
	}
}

func TestIssueTable_Markdown(t *testing.T) {
	out := format.IssueTable(sample, format.Markdown)
	if !strings.Contains(out, "|") {
		t.Errorf("Markdown table has no pipes:\n%s", out)
	}
	if !strings.Contains(out, "unusedHelper()") {
		t.Errorf("Markdown table missing row content:\n%s", out)
	}
}

func TestParseMode(t *testing.T) {
	if format.ParseMode("markdown") != format.Markdown || format.ParseMode("md") != format.Markdown {
		t.Error("markdown aliases not recognized")
	}
	if format.ParseMode("ascii") != format.ASCII || format.ParseMode("") != format.ASCII {
		t.Error("default mode should be ASCII")
	}
}
