package utils

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAddFilters(t *testing.T) {
	allowed := map[string]string{
		"category": "e.category",
		"currency": "e.currency",
	}
	r := httptest.NewRequest("GET", "/expenses/trip/1/expenses?category=food&currency=EUR&bogus=1", nil)

	query, args := AddFilters(r, "SELECT * FROM expenses e WHERE e.trip_id = ?", []interface{}{1}, allowed)

	if len(args) != 3 {
		t.Fatalf("got %d args, want 3", len(args))
	}
	for _, want := range []string{"e.category = ?", "e.currency = ?"} {
		if !strings.Contains(query, want) {
			t.Errorf("query %q missing %q", query, want)
		}
	}
	if strings.Contains(query, "bogus") {
		t.Errorf("query %q picked up a non-whitelisted param", query)
	}
}

func TestAddFiltersRespectsCallSiteWhitelist(t *testing.T) {
	// A parameter that only exists on another table's whitelist must not
	// leak into this query.
	tripAllowed := map[string]string{"destination": "t.destination"}
	r := httptest.NewRequest("GET", "/trips/?category=food&destination=Lisbon", nil)

	base := "SELECT * FROM trips t WHERE t.is_deleted = FALSE"
	query, args := AddFilters(r, base, nil, tripAllowed)

	if strings.Contains(query, "category") {
		t.Errorf("query %q picked up a column from another table's whitelist", query)
	}
	if want := base + " AND t.destination = ?"; query != want {
		t.Errorf("AddFilters() = %q, want %q", query, want)
	}
	if len(args) != 1 || args[0] != "Lisbon" {
		t.Errorf("args = %v, want [Lisbon]", args)
	}
}

func TestAddSorting(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "single sort",
			url:  "/trips/?sortby=date:desc",
			want: " ORDER BY date DESC",
		},
		{
			name: "multiple sorts keep order",
			url:  "/trips/?sortby=amount:desc&sortby=title:asc",
			want: " ORDER BY amount DESC, title ASC",
		},
		{
			name: "unknown field ignored",
			url:  "/trips/?sortby=password:asc",
			want: "",
		},
		{
			name: "bad direction ignored",
			url:  "/trips/?sortby=date:sideways",
			want: "",
		},
		{
			name: "no sort param",
			url:  "/trips/",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			got := AddSorting(r, "")
			if got != tt.want {
				t.Errorf("AddSorting() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetPaginationParams(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "/trips/", 1, 20},
		{"explicit", "/trips/?page=3&limit=50", 3, 50},
		{"zero page falls back", "/trips/?page=0", 1, 20},
		{"oversized limit capped", "/trips/?limit=500", 1, 20},
		{"garbage ignored", "/trips/?page=abc&limit=xyz", 1, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			page, limit := GetPaginationParams(r)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("GetPaginationParams() = (%d, %d), want (%d, %d)", page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

