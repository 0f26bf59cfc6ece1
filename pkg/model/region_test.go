package model

import "testing"

func TestValidPhone(t *testing.T) {
	cases := []struct {
		region Region
		phone  string
		valid  bool
	}{
		{RegionOman, "92506030", true},
		{RegionOman, "99123456", true},
		{RegionOman, "82506030", false},
		{RegionOman, "9250603", false},
		{RegionOman, "925060301", false},
		{RegionOman, "9250603a", false},
		{RegionOman, "", false},
		{RegionKSA, "512345678", true},
		{RegionKSA, "612345678", false},
		{RegionKSA, "51234567", false},
	}
	for _, tc := range cases {
		if got := tc.region.ValidPhone(tc.phone); got != tc.valid {
			t.Fatalf("%s.ValidPhone(%q) = %v, want %v", tc.region.Code, tc.phone, got, tc.valid)
		}
	}
}

func TestRegionByCode(t *testing.T) {
	if r, ok := RegionByCode("sa"); !ok || r.Name != "Saudi Arabia" {
		t.Fatalf("RegionByCode(sa) = %+v, %v", r, ok)
	}
	if _, ok := RegionByCode("ae"); ok {
		t.Fatal("unknown code resolved")
	}
}

func TestRolePredicates(t *testing.T) {
	u := UserInfo{Roles: []string{RoleUser}}
	if !u.HasRole(RoleUser) || u.IsAdmin() {
		t.Fatalf("roles = %v", u.Roles)
	}
	if !u.HasAnyRole(RoleAdmin, RoleUser) {
		t.Fatal("HasAnyRole missed a held role")
	}
	if u.HasAnyRole(RoleAdmin) {
		t.Fatal("HasAnyRole reported an unheld role")
	}
}
