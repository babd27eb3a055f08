package util

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		wantErr  bool
	}{
		{"empty", "", nil, false},
		{"comment", "# apply a preset", nil, false},
		{"words", "move ncap-rear  -2.1,0,0.6", []string{"move", "ncap-rear", "-2.1,0,0.6"}, false},
		{"quoted", `save "my layout" now`, []string{"save", "my layout", "now"}, false},
		{"escaped quote", `save "the ""best"" one"`, []string{"save", `the "best" one`}, false},
		{"empty quoted", `save ""`, []string{"save", ""}, false},
		{"tabs", "list\tall", []string{"list", "all"}, false},
		{"unterminated", `save "oops`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Tokenize(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Tokenize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseFloats(t *testing.T) {
	got, err := ParseFloats("1.5, -0.25,0", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []float64{1.5, -0.25, 0}) {
		t.Errorf("ParseFloats = %v", got)
	}

	if _, err := ParseFloats("1,2", 3); err == nil {
		t.Error("expected error for wrong count")
	}
	if _, err := ParseFloats("1,x", 2); err == nil {
		t.Error("expected error for bad number")
	}
}

func TestParseSwitch(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"OFF", false, false},
		{"true", true, false},
		{"0", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSwitch(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSwitch(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseSwitch(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
