package types

// SubscriptionTier controls which shipment fields a user may see.
type SubscriptionTier string

const (
	TierFree   SubscriptionTier = "free"
	TierBronze SubscriptionTier = "bronze"
	TierSilver SubscriptionTier = "silver"
	TierGold   SubscriptionTier = "gold"
)

type TierCapabilities struct {
	CanViewPhoto        bool
	CanViewVerification bool
	CanConsolidate      bool
}

func (t SubscriptionTier) Valid() bool {
	switch t {
	case TierFree, TierBronze, TierSilver, TierGold:
		return true
	}
	return false
}

// Capabilities is the single tier policy. Every projection path derives its
// flags from here; nothing else may duplicate this table.
func (t SubscriptionTier) Capabilities() TierCapabilities {
	return TierCapabilities{
		CanViewPhoto:        t != TierFree,
		CanViewVerification: t == TierSilver || t == TierGold,
		CanConsolidate:      t == TierGold,
	}
}
