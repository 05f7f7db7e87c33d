package textutil

import "testing"

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"  Shopper@Example.COM  ", "shopper@example.com"},
		{"ｓｈｏｐ＠ｅｘａｍｐｌｅ．ｃｏｍ", "shop@example.com"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := NormalizeEmail(tc.raw); got != tc.want {
			t.Fatalf("NormalizeEmail(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"  Asha   Rai ", "Asha Rai"},
		{"Ｗｉｎｔｅｒ Ｊａｃｋｅｔ", "Winter Jacket"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeName(tc.raw); got != tc.want {
			t.Fatalf("NormalizeName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
