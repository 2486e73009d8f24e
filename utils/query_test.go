package utils

import "testing"

func TestNormalizeQuery(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Amélie", "amelie"},
		{"  The   Matrix  ", "the matrix"},
		{"BLADE RUNNER", "blade runner"},
		{"Léon:\tThe Professional", "leon: the professional"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeQuery(tc.in); got != tc.want {
			t.Fatalf("NormalizeQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
