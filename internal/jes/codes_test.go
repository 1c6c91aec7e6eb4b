package jes

import "testing"

func TestIsNumeric(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"0000", true},
		{"0016", true},
		{"8", true},
		{"", false},
		{"0C4", false},
		{"ABEND_S0C7", false},
		{CodeJCLError, false},
		{CodeNoRCLevel1, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := IsNumeric(tt.code); got != tt.want {
				t.Errorf("IsNumeric(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestNormalizeThreshold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0000"},
		{"0", "0000"},
		{"8", "0008"},
		{"12", "0012"},
		{"0016", "0016"},
		{" 4 ", "0004"},
		{"12345", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeThreshold(tt.in); got != tt.want {
				t.Errorf("NormalizeThreshold(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestAccepted(t *testing.T) {
	tests := []struct {
		name      string
		threshold string
		code      string
		want      bool
	}{
		{"clean rc at default threshold", "", "0000", true},
		{"equal threshold", "0000", "0000", true},
		{"rc above threshold", "0000", "0004", false},
		{"unpadded threshold", "8", "0008", true},
		{"rc below threshold", "0012", "0008", true},
		{"rc just above threshold", "0004", "0008", false},
		{"abend never passes", "9999", "ABEND_S0C7", false},
		{"jcl error never passes", "9999", CodeJCLError, false},
		{"missing rc never passes", "9999", CodeCouldNotRetrieveRC, false},
		{"empty code never passes", "9999", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Accepted(tt.threshold, tt.code); got != tt.want {
				t.Errorf("Accepted(%q, %q) = %v, want %v", tt.threshold, tt.code, got, tt.want)
			}
		})
	}
}
