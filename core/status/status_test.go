// Package status - Derivation precedence tests
package status

import (
	"testing"
	"time"
)

var now = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func past(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func future(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

// TestPromoPrecedence verifies disabled beats expired beats exhausted.
func TestPromoPrecedence(t *testing.T) {
	cases := []struct {
		name           string
		disabled       bool
		expiresAt      *time.Time
		maxRedemptions int
		redemptions    int
		want           PromoStatus
	}{
		{"fresh code", false, future(24 * time.Hour), 10, 0, PromoActive},
		{"no expiry, unlimited", false, nil, 0, 999, PromoActive},
		{"expired", false, past(time.Hour), 10, 0, PromoExpired},
		{"expires exactly now", false, &now, 10, 0, PromoExpired},
		{"exhausted", false, future(24 * time.Hour), 5, 5, PromoExhausted},
		{"over-redeemed", false, nil, 5, 7, PromoExhausted},
		{"disabled wins over expired", true, past(time.Hour), 10, 0, PromoDisabled},
		{"expired wins over exhausted", false, past(time.Hour), 5, 5, PromoExpired},
	}

	for _, tc := range cases {
		got := ForPromo(tc.disabled, tc.expiresAt, tc.maxRedemptions, tc.redemptions, now)
		if got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

// TestTrialLifecycle verifies the trial grant state transitions.
func TestTrialLifecycle(t *testing.T) {
	cases := []struct {
		name       string
		startsAt   time.Time
		expiresAt  time.Time
		redeemedAt *time.Time
		want       TrialStatus
	}{
		{"not started", now.Add(time.Hour), now.Add(14 * 24 * time.Hour), nil, TrialPending},
		{"running", now.Add(-time.Hour), now.Add(24 * time.Hour), nil, TrialActive},
		{"window closed", now.Add(-48 * time.Hour), now.Add(-time.Hour), nil, TrialExpired},
		{"redeemed", now.Add(-48 * time.Hour), now.Add(24 * time.Hour), past(time.Hour), TrialRedeemed},
		{"redeemed stays redeemed after expiry", now.Add(-48 * time.Hour), now.Add(-time.Hour), past(2 * time.Hour), TrialRedeemed},
	}

	for _, tc := range cases {
		got := ForTrial(tc.startsAt, tc.expiresAt, tc.redeemedAt, now)
		if got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}
