package alert

import (
	"reflect"
	"strings"
	"testing"

	"github.com/clinsight/cdsengine/internal/types"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		path string
		want []segment
		ok   bool
	}{
		{"condition.eGFR", []segment{{key: "condition"}, {key: "eGFR"}}, true},
		{"refs[2].text", []segment{{key: "refs"}, {index: 2, isIndex: true}, {key: "text"}}, true},
		{"a[0][1]", []segment{{key: "a"}, {index: 0, isIndex: true}, {index: 1, isIndex: true}}, true},
		{"simple", []segment{{key: "simple"}}, true},
		{"", nil, false},
		{"a..b", nil, false},
		{"a[x]", nil, false},
		{"a[-1]", nil, false},
		{"a[1", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := parsePath(tt.path)
			if ok != tt.ok {
				t.Fatalf("parsePath(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parsePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParsePath_DepthLimit(t *testing.T) {
	deep := "a" + strings.Repeat(".b", types.MaxSourcePathDepth)
	if _, ok := parsePath(deep); ok {
		t.Error("parsePath accepted path beyond depth limit")
	}
}

func TestResolve(t *testing.T) {
	ctx := map[string]any{
		"condition": types.Snapshot{
			"eGFR":       25.0,
			"medication": []string{"ibuprofen", "naproxen"},
		},
		"action": map[string]any{
			"references": []any{
				map[string]any{"text": "KDIGO guideline"},
			},
		},
	}

	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"condition.eGFR", 25.0, true},
		{"condition.medication[1]", "naproxen", true},
		{"action.references[0].text", "KDIGO guideline", true},
		{"condition.missing", nil, false},
		{"condition.medication[5]", nil, false},
		{"condition.eGFR.deeper", nil, false},
		{"condition.medication.text", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			segs, ok := parsePath(tt.path)
			if !ok {
				t.Fatalf("parsePath(%q) failed", tt.path)
			}
			got, ok := resolve(segs, ctx)
			if ok != tt.ok {
				t.Fatalf("resolve(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			}
			if ok && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolve(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", "abc", "abc"},
		{"float no trailing zeros", 460.0, "460"},
		{"float fractional", 2.5, "2.5"},
		{"int", 7, "7"},
		{"bool", true, "true"},
		{"string list", []string{"a", "b"}, "a, b"},
		{"any list", []any{"x", 1.0}, "x, 1"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(tt.in); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
