package sanitize

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Groceries", "Groceries"},
		{"script removed with body", "<script>alert('x')</script>Lunch", "Lunch"},
		{"tags stripped", "<b>Dinner</b> out", "Dinner out"},
		{"event handler dropped", `<img src=x onerror="alert(1)">Taxi`, "Taxi"},
		{"ampersand kept", "Tom & Jerry", "Tom & Jerry"},
		{"whitespace trimmed", "  coffee  ", "coffee"},
		{"empty", "", ""},
		{"entity encoded script", "&lt;script&gt;alert(1)&lt;/script&gt;Lunch", "Lunch"},
		{"double encoded script", "&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;Lunch", "Lunch"},
		{"entity encoded handler", "&lt;img src=x onerror=alert(1)&gt;Taxi", "Taxi"},
		{"numeric entities", "&#60;b&#62;Bold&#60;/b&#62;", "Bold"},
		{"less than kept", "2 < 3", "2 < 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestText_NoMarkupSurvives(t *testing.T) {
	inputs := []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&amp;lt;iframe src=javascript:alert(1)&amp;gt;",
		"&lt;&lt;script&gt;script&gt;alert(1)&lt;/script&gt;",
		"&" + strings.Repeat("amp;", 12) + "lt;script&" + strings.Repeat("amp;", 12) + "gt;alert(1)",
	}
	for _, in := range inputs {
		got := strings.ToLower(Text(in))
		if strings.Contains(got, "<script") || strings.Contains(got, "<iframe") {
			t.Errorf("Text(%q) = %q still contains markup", in, got)
		}
	}
}

func TestList(t *testing.T) {
	got := List([]string{"<i>food</i>", "travel"})
	if got[0] != "food" || got[1] != "travel" {
		t.Errorf("unexpected result %v", got)
	}
	if List(nil) != nil {
		t.Error("expected nil for nil input")
	}
}
