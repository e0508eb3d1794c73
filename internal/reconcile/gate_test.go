package reconcile

import "testing"

func TestAffirmative(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"y", true},
		{"Y", true},
		{"yes", true},
		{"YES", true},
		{" yes \n", true},
		{"", false},
		{"n", false},
		{"no", false},
		{"yep", false},
		{"j", false},
	}
	for _, tt := range tests {
		if got := Affirmative(tt.answer); got != tt.want {
			t.Errorf("Affirmative(%q) = %v, want %v", tt.answer, got, tt.want)
		}
	}
}
