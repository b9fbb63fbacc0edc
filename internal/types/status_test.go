package types

import "testing"

func TestStatusLabels_CoverEveryStatus(t *testing.T) {
	cases := map[ShipmentStatus]string{
		StatusPending:       "Shipment Pending",
		StatusReceivedUAE:   "Received at UAE Warehouse",
		StatusConsolidating: "Consolidation in Progress",
		StatusShipped:       "Shipped to Lebanon",
		StatusArrivedLeb:    "Arrived in Lebanon",
		StatusDelivered:     "Delivered to Customer",
	}
	for status, want := range cases {
		if !status.Valid() {
			t.Errorf("expected %s to be valid", status)
		}
		if got := status.Label(); got != want {
			t.Errorf("%s: label %q want %q", status, got, want)
		}
	}
}

func TestStatusValid_RejectsUnknown(t *testing.T) {
	for _, status := range []ShipmentStatus{"", "lost", "PENDING"} {
		if status.Valid() {
			t.Errorf("expected %q to be invalid", status)
		}
	}
}
