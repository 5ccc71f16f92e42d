package exiftags

import "testing"

func TestStringifyHandlesCommonExifValueTypes(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"Canon", "Canon"},
		{float64(35), "35"},
		{true, "true"},
	}
	for _, c := range cases {
		if got := stringify(c.in); got != c.want {
			t.Errorf("stringify(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
