package accesscontrol

import "testing"

func TestHasRoleLadder(t *testing.T) {
	roles := Roles()
	for _, actual := range roles {
		for _, required := range roles {
			want := actual.Rank() <= required.Rank()
			if got := HasRole(actual, required); got != want {
				t.Fatalf("HasRole(%s, %s) = %v, want %v", actual, required, got, want)
			}
		}
	}
}

func TestUnknownRolesNeverPass(t *testing.T) {
	for _, required := range Roles() {
		if HasRole("superuser", required) {
			t.Fatalf("unknown actual role satisfied %s", required)
		}
		if HasRole("", required) {
			t.Fatalf("empty actual role satisfied %s", required)
		}
	}
	if HasRole(RoleMaster, "root") {
		t.Fatal("unknown required role was satisfied")
	}
	if RoleName("nope").Rank() != 99 {
		t.Fatalf("unknown rank = %d", RoleName("nope").Rank())
	}
}

func TestPermissionsFor(t *testing.T) {
	tests := []struct {
		role RoleName
		want Permissions
	}{
		{RoleMaster, Permissions{true, true, true, true}},
		{RoleAdmin, Permissions{true, true, true, false}},
		{RoleEmployee, Permissions{true, false, false, false}},
		{RoleUser, Permissions{false, false, false, false}},
		{"ghost", Permissions{}},
	}
	for _, tt := range tests {
		if got := PermissionsFor(tt.role); got != tt.want {
			t.Fatalf("PermissionsFor(%s) = %+v, want %+v", tt.role, got, tt.want)
		}
	}
}

func TestCanCreate(t *testing.T) {
	tests := []struct {
		actor, target RoleName
		want          bool
	}{
		{RoleMaster, RoleMaster, true},
		{RoleMaster, RoleAdmin, true},
		{RoleAdmin, RoleMaster, false},
		{RoleAdmin, RoleAdmin, false},
		{RoleAdmin, RoleEmployee, true},
		{RoleAdmin, RoleUser, true},
		{RoleEmployee, RoleUser, false},
	}
	for _, tt := range tests {
		if got := CanCreate(tt.actor, tt.target); got != tt.want {
			t.Fatalf("CanCreate(%s, %s) = %v, want %v", tt.actor, tt.target, got, tt.want)
		}
	}
}
