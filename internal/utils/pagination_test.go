package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		// empty -> default
		{"", 10, 10},
		// parsable
		{"42", 0, 42},
		{"-7", 0, -7},
		{"0", 5, 0},
		// junk -> default
		{"x", 5, 5},
		{" 42", 7, 7},
		// overflow -> default
		{"999999999999999999999999", -1, -1},
	}

	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestPageWindow(t *testing.T) {
	cases := []struct {
		page, size                     string
		wantPage, wantSize, wantOffset int
	}{
		// defaults
		{"", "", 1, 20, 0},
		// regular paging
		{"3", "10", 3, 10, 20},
		// clamp below
		{"0", "0", 1, 1, 0},
		{"-2", "-5", 1, 1, 0},
		// clamp above
		{"2", "500", 2, 100, 100},
		// junk -> defaults
		{"x", "y", 1, 20, 0},
	}

	for _, tc := range cases {
		page, size, offset := PageWindow(tc.page, tc.size, 20, 100)
		if page != tc.wantPage || size != tc.wantSize || offset != tc.wantOffset {
			t.Fatalf("PageWindow(%q, %q) = (%d, %d, %d); want (%d, %d, %d)",
				tc.page, tc.size, page, size, offset, tc.wantPage, tc.wantSize, tc.wantOffset)
		}
	}
}
