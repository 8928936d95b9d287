package domain

import (
	"testing"
	"time"
)

func TestRecordLoginLocksAfterRepeatedFailures(t *testing.T) {
	now := time.Now()
	u := &User{}
	for i := 0; i < MaxFailedLogins-1; i++ {
		u.RecordLogin(false, now)
	}
	if u.IsLocked() {
		t.Fatal("locked before reaching the failure limit")
	}

	u.RecordLogin(false, now)
	if !u.IsLocked() {
		t.Fatal("not locked after the failure limit")
	}
	if !u.LockedUntil.Equal(now.Add(LoginLockout)) {
		t.Errorf("LockedUntil = %v, want %v", u.LockedUntil, now.Add(LoginLockout))
	}
}

func TestRecordLoginSuccessResets(t *testing.T) {
	now := time.Now()
	u := &User{FailedLoginCount: 3}
	u.RecordLogin(true, now)
	if u.FailedLoginCount != 0 || u.LockedUntil != nil {
		t.Errorf("after success: failures=%d locked=%v", u.FailedLoginCount, u.LockedUntil)
	}
	if u.LastLoginAt == nil || !u.LastLoginAt.Equal(now) {
		t.Errorf("LastLoginAt = %v", u.LastLoginAt)
	}
}

func TestRoles(t *testing.T) {
	for _, r := range []Role{RoleAdmin, RolePharmacist, RoleCashier} {
		if !r.IsValid() || !r.IsStaff() {
			t.Errorf("%s should be a valid staff role", r)
		}
	}
	if !RoleCustomer.IsValid() || RoleCustomer.IsStaff() {
		t.Error("customer should be valid and not staff")
	}
	if Role("doctor").IsValid() {
		t.Error("unknown role accepted")
	}
}
