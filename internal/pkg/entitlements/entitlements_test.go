package entitlements

import (
	"testing"
	"time"

	"github.com/MiguelSanz/Anunzio/internal/pkg/plans"
)

func ptr(t time.Time) *time.Time { return &t }

func TestIsActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"nil expiry is perpetual", nil, true},
		{"future expiry", ptr(now.Add(time.Hour)), true},
		{"exactly now is expired", ptr(now), false},
		{"past expiry", ptr(now.Add(-time.Second)), false},
	}
	for _, tt := range tests {
		if got := IsActive(tt.expiresAt, now); got != tt.want {
			t.Errorf("%s: IsActive = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHasPaidEntitlement(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := ptr(now.Add(24 * time.Hour))
	past := ptr(now.Add(-24 * time.Hour))

	tests := []struct {
		name      string
		plan      plans.Plan
		expiresAt *time.Time
		want      bool
	}{
		{"premium active", plans.PlanPremium, future, true},
		{"premium expired", plans.PlanPremium, past, false},
		{"basic active stays unbadged", plans.PlanBasic, future, false},
		{"free active", plans.PlanFree, future, false},
		{"premium perpetual", plans.PlanPremium, nil, true},
	}
	for _, tt := range tests {
		if got := HasPaidEntitlement(tt.plan, tt.expiresAt, now); got != tt.want {
			t.Errorf("%s: HasPaidEntitlement = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsVerifiedTierActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := ptr(now.Add(time.Hour))

	if !IsVerifiedTierActive(plans.PlanPremium, future, now) {
		t.Error("active premium should be verified")
	}
	if IsVerifiedTierActive(plans.PlanBasic, future, now) {
		t.Error("basic is never verified")
	}
	if IsVerifiedTierActive(plans.PlanPremium, ptr(now.Add(-time.Hour)), now) {
		t.Error("expired premium is not verified")
	}
}

func TestVisiblePhotoCap(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-1, 0},
		{0, 0},
		{3, 3},
		{12, 12},
		{50, 12},
	}
	for _, tt := range tests {
		if got := VisiblePhotoCap(tt.in); got != tt.want {
			t.Errorf("VisiblePhotoCap(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
