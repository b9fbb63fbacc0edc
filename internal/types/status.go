package types

// ShipmentStatus is a labeled enum. The canonical forwarding path is
// pending -> received_uae -> consolidating -> shipped -> arrived_leb ->
// delivered, but any known status may be set by an admin: warehouse
// corrections and rescans happen out of order.
type ShipmentStatus string

const (
	StatusPending       ShipmentStatus = "pending"
	StatusReceivedUAE   ShipmentStatus = "received_uae"
	StatusConsolidating ShipmentStatus = "consolidating"
	StatusShipped       ShipmentStatus = "shipped"
	StatusArrivedLeb    ShipmentStatus = "arrived_leb"
	StatusDelivered     ShipmentStatus = "delivered"
)

var statusLabels = map[ShipmentStatus]string{
	StatusPending:       "Shipment Pending",
	StatusReceivedUAE:   "Received at UAE Warehouse",
	StatusConsolidating: "Consolidation in Progress",
	StatusShipped:       "Shipped to Lebanon",
	StatusArrivedLeb:    "Arrived in Lebanon",
	StatusDelivered:     "Delivered to Customer",
}

func (s ShipmentStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the human readable event text recorded when a shipment enters
// this status.
func (s ShipmentStatus) Label() string {
	return statusLabels[s]
}
