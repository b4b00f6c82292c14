package utils

import "testing"

func TestParsePage(t *testing.T) {
	cases := []struct {
		page, size string
		want       Page
	}{
		{"", "", Page{1, 20}},
		{"3", "50", Page{3, 50}},
		{"0", "0", Page{1, 1}},
		{"-2", "-5", Page{1, 1}},
		{"2", "500", Page{2, 100}},
		// malformed -> defaults (no trim)
		{"x", " 42", Page{1, 20}},
		// overflow -> default
		{"999999999999999999999999", "", Page{1, 20}},
	}
	for _, tc := range cases {
		if got := ParsePage(tc.page, tc.size, 20, 100); got != tc.want {
			t.Fatalf("ParsePage(%q, %q) = %+v; want %+v", tc.page, tc.size, got, tc.want)
		}
	}
}

func TestPage_Offset(t *testing.T) {
	if got := (Page{Number: 1, Size: 20}).Offset(); got != 0 {
		t.Fatalf("first page offset = %d", got)
	}
	if got := (Page{Number: 4, Size: 25}).Offset(); got != 75 {
		t.Fatalf("page 4 offset = %d", got)
	}
	if got := (Page{Number: 0, Size: 25}).Offset(); got != 0 {
		t.Fatalf("zero page offset = %d", got)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Fatalf("TotalPages(%d, %d) = %d; want %d", tc.total, tc.size, got, tc.want)
		}
	}
}
