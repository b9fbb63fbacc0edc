package types

// PublicTrackingInfo is the only shape the unauthenticated tracking page
// ever sees. Owner identity, photos and notes never appear here.
type PublicTrackingInfo struct {
	TrackingNumber string         `json:"tracking_number"`
	Status         ShipmentStatus `json:"status"`
	LastEvent      *string        `json:"last_event"`
	LastLocation   *string        `json:"last_location"`
}

// ShipmentDetails is the tier-filtered view of a shipment handed to end
// users. The capability flags are always re-derived from the tier policy.
type ShipmentDetails struct {
	Shipment
	Events                  []ShipmentEvent `json:"events"`
	PhotoAccessible         bool            `json:"photo_accessible"`
	VerificationAccessible  bool            `json:"verification_accessible"`
	ConsolidationAccessible bool            `json:"consolidation_accessible"`
}
