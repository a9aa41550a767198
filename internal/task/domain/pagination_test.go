package domain

import (
	"math"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"", "", 1, 5},
		{"2", "10", 2, 10},
		{"0", "0", 1, 5},
		{"-3", "-1", 1, 5},
		{"abc", "xyz", 1, 5},
		{"1.5", "5", 1, 5},
		{"3", "1000", 3, MaxLimit},
	}
	for _, tc := range tests {
		got := ParsePagination(tc.page, tc.limit)
		if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
			t.Errorf("ParsePagination(%q, %q) = %+v, want {%d %d}", tc.page, tc.limit, got, tc.wantPage, tc.wantLimit)
		}
	}
}

func TestPagination_Offset(t *testing.T) {
	if got := NewPagination(3, 5).Offset(); got != 10 {
		t.Errorf("Offset = %d, want 10", got)
	}
	if got := NewPagination(1, 5).Offset(); got != 0 {
		t.Errorf("Offset = %d, want 0", got)
	}
	if got := NewPagination(math.MaxInt, 100).Offset(); got != math.MaxInt32 {
		t.Errorf("Offset = %d, want saturation at MaxInt32", got)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ total, limit, want int }{
		{0, 5, 0},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{12, 5, 3},
		{12, 0, 0},
	}
	for _, tc := range tests {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
