package domain

import "testing"

func TestRouteTable_Match(t *testing.T) {
	table, err := NewRouteTable(DefaultRoutes())
	if err != nil {
		t.Fatalf("NewRouteTable: %v", err)
	}

	cases := []struct {
		path string
		name string
		ok   bool
	}{
		{"/", "dashboard", true},
		{"/login", "login", true},
		{"/books/42", "book-detail", true},
		{"/books/abc", "book-detail", true}, // params match any segment
		{"/my-borrows", "my-borrows", true},
		{"/admin/books", "admin-books", true},
		{"/books", "", false},
		{"/books/42/extra", "", false},
		{"/nope", "", false},
	}
	for _, tc := range cases {
		r, ok := table.Match(tc.path)
		if ok != tc.ok {
			t.Fatalf("Match(%q) ok = %v, want %v", tc.path, ok, tc.ok)
		}
		if ok && r.Name != tc.name {
			t.Fatalf("Match(%q) = %q, want %q", tc.path, r.Name, tc.name)
		}
	}
}

func TestRoute_ValidateFlagCombinations(t *testing.T) {
	bad := []Route{
		{Path: "/x", Name: "a", GuestOnly: true, RequiresAuth: true},
		{Path: "/x", Name: "b", GuestOnly: true, RequiresAdmin: true},
		{Path: "/x", Name: "c", RequiresAdmin: true},
		{Path: "no-slash", Name: "d"},
	}
	for _, r := range bad {
		if err := r.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", r)
		}
	}

	good := Route{Path: "/x", Name: "e", RequiresAuth: true, RequiresAdmin: true}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error for %+v: %v", good, err)
	}
}

func TestNewRouteTable_RejectsDuplicateNames(t *testing.T) {
	_, err := NewRouteTable([]Route{
		{Path: "/a", Name: "same"},
		{Path: "/b", Name: "same"},
	})
	if err == nil {
		t.Fatalf("expected duplicate-name error")
	}
}
