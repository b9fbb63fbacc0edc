package types

import "testing"

func TestTierCapabilities_PolicyTable(t *testing.T) {
	cases := []struct {
		tier         SubscriptionTier
		photo        bool
		verification bool
		consolidate  bool
	}{
		{TierFree, false, false, false},
		{TierBronze, true, false, false},
		{TierSilver, true, true, false},
		{TierGold, true, true, true},
	}
	for _, tc := range cases {
		caps := tc.tier.Capabilities()
		if caps.CanViewPhoto != tc.photo {
			t.Errorf("%s: CanViewPhoto=%v want %v", tc.tier, caps.CanViewPhoto, tc.photo)
		}
		if caps.CanViewVerification != tc.verification {
			t.Errorf("%s: CanViewVerification=%v want %v", tc.tier, caps.CanViewVerification, tc.verification)
		}
		if caps.CanConsolidate != tc.consolidate {
			t.Errorf("%s: CanConsolidate=%v want %v", tc.tier, caps.CanConsolidate, tc.consolidate)
		}
	}
}

func TestTierValid_RejectsUnknownValues(t *testing.T) {
	for _, tier := range []SubscriptionTier{TierFree, TierBronze, TierSilver, TierGold} {
		if !tier.Valid() {
			t.Errorf("expected %s to be valid", tier)
		}
	}
	for _, tier := range []SubscriptionTier{"", "platinum", "Gold"} {
		if tier.Valid() {
			t.Errorf("expected %q to be invalid", tier)
		}
	}
}
