package model

import (
	"testing"
	"time"
)

var fixedTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

const minute = time.Minute

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAdmin} {
		if !r.Valid() {
			t.Fatalf("expected %q valid", r)
		}
	}
	for _, r := range []Role{"", "root", "Admin"} {
		if r.Valid() {
			t.Fatalf("expected %q invalid", r)
		}
	}
}
