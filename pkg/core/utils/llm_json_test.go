package utils_test

import (
	"strings"
	"testing"

	"stock_valuation/pkg/core/utils"
)

type bulletsSchema struct {
	Bullets []string `json:"bullets"`
}

func TestSmartParse_StandardJSON(t *testing.T) {
	var doc bulletsSchema
	out, err := utils.SmartParse(`{"bullets": ["a", "b"]}`, &doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out == "" || len(doc.Bullets) != 2 {
		t.Errorf("got %q / %+v", out, doc)
	}
}

func TestSmartParse_RepairsTrailingComma(t *testing.T) {
	var doc bulletsSchema
	_, err := utils.SmartParse(`{"bullets": ["a",]}`, &doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Bullets) != 1 || doc.Bullets[0] != "a" {
		t.Errorf("got %+v", doc)
	}
}

func TestSmartParse_HjsonStyle(t *testing.T) {
	var doc bulletsSchema
	_, err := utils.SmartParse("{\n  bullets: [\"a\"]\n}", &doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Bullets) != 1 {
		t.Errorf("got %+v", doc)
	}
}

func TestSmartParse_Hopeless(t *testing.T) {
	var doc bulletsSchema
	if _, err := utils.SmartParse("not even close", &doc); err == nil {
		t.Fatal("expected error for unparseable input")
	}
}

func TestCleanMarkdown(t *testing.T) {
	cases := []struct {
		in  string
		exp string
	}{
		{"plain text", "plain text"},
		{"```markdown\n# Title\n```", "# Title"},
		{"```\n- bullet\n```", "- bullet"},
		{"  padded  ", "padded"},
	}
	for _, tc := range cases {
		if got := utils.CleanMarkdown(tc.in); got != tc.exp {
			t.Errorf("CleanMarkdown(%q): got %q, exp %q", tc.in, got, tc.exp)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	html := utils.RenderMarkdown("- Expanding services revenue")
	if !strings.Contains(html, "<li>") {
		t.Errorf("expected list markup, got %q", html)
	}
}
