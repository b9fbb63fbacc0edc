package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Daniel-Osman/nfd-express/internal/services"
)

type TrackingHandler struct {
	trackingService services.TrackingService
}

func NewTrackingHandler(trackingService services.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

// Track serves the public tracking lookup. No authentication, and the
// payload never goes beyond status and last event.
func (th *TrackingHandler) Track(c *gin.Context) {
	info, err := th.trackingService.PublicTracking(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if info == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tracking number not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tracking": info})
}

func (th *TrackingHandler) MyShipments(c *gin.Context) {
	shipments, err := th.trackingService.ShipmentsForCaller(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipments": shipments})
}

func (th *TrackingHandler) ShipmentDetails(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipment id"})
		return
	}
	details, err := th.trackingService.ShipmentDetails(c.Request.Context(), shipmentID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if details == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shipment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipment": details})
}
