package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Daniel-Osman/nfd-express/internal/services"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type ShipmentHandler struct {
	shipmentService      services.ShipmentService
	consolidationService services.ConsolidationService
}

func NewShipmentHandler(shipmentService services.ShipmentService, consolidationService services.ConsolidationService) *ShipmentHandler {
	return &ShipmentHandler{
		shipmentService:      shipmentService,
		consolidationService: consolidationService,
	}
}

func (sh *ShipmentHandler) Create(c *gin.Context) {
	var req struct {
		TrackingNumber string          `json:"tracking_number"`
		UserID         string          `json:"user_id"`
		WeightKG       *float64        `json:"weight_kg"`
		Dimensions     json.RawMessage `json:"dimensions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ownerID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
		return
	}
	shipment, err := sh.shipmentService.CreateShipment(c.Request.Context(), services.CreateShipmentInput{
		TrackingNumber: req.TrackingNumber,
		OwnerID:        ownerID,
		WeightKG:       req.WeightKG,
		Dimensions:     datatypes.JSON(req.Dimensions),
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipment": shipment})
}

func (sh *ShipmentHandler) UpdateStatus(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipment id"})
		return
	}
	var req struct {
		Status   string  `json:"status"`
		Location *string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := sh.shipmentService.UpdateStatus(c.Request.Context(), shipmentID, types.ShipmentStatus(req.Status), req.Location); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (sh *ShipmentHandler) UploadPhoto(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipment id"})
		return
	}
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
		return
	}
	defer file.Close()
	photo, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
		return
	}
	ext := strings.TrimPrefix(filepath.Ext(fileHeader.Filename), ".")
	photoURL, err := sh.shipmentService.UploadProofPhoto(c.Request.Context(), shipmentID, photo, ext)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photo_url": photoURL})
}

func (sh *ShipmentHandler) AddVerification(c *gin.Context) {
	shipmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipment id"})
		return
	}
	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := sh.shipmentService.AddVerificationNote(c.Request.Context(), shipmentID, req.Notes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": "true"})
}

func (sh *ShipmentHandler) GetAll(c *gin.Context) {
	shipments, err := sh.shipmentService.GetAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipments": shipments})
}

func (sh *ShipmentHandler) Search(c *gin.Context) {
	shipments, err := sh.shipmentService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipments": shipments})
}

func (sh *ShipmentHandler) GetByTracking(c *gin.Context) {
	shipment, err := sh.shipmentService.GetByTrackingNumber(c.Request.Context(), c.Param("trackingNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if shipment == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "shipment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipment": shipment})
}

func (sh *ShipmentHandler) Consolidate(c *gin.Context) {
	var req struct {
		ShipmentIDs []string `json:"shipment_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	ids := make([]uuid.UUID, 0, len(req.ShipmentIDs))
	for _, raw := range req.ShipmentIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shipment id " + raw})
			return
		}
		ids = append(ids, id)
	}
	master, err := sh.consolidationService.Consolidate(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shipment": master})
}
