package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/PratikDhanave/campaign-analytics-service/internal/auth"
	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
)

// RegisterEventRoutes registers the ingestion-path endpoints.
//
// POST /events
// - Requires X-API-Key (tenant context)
// - Durable: returns success only after DB write completes
// - Idempotent: duplicates detected via (tenant_id, event_id) uniqueness
//
// POST /contacts
// - Creates or replaces a contact record
func RegisterEventRoutes(r gin.IRoutes, svc CampaignAPI) {
	r.POST("/events", func(c *gin.Context) {
		tenantID := auth.TenantID(c)
		if tenantID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req models.EventIngestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		// Required fields per contract.
		if strings.TrimSpace(req.ContactID) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "contact_id required"})
			return
		}
		if req.EventDT == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_dt required"})
			return
		}

		ts, err := parseTimestamp(req.EventDT)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event_dt must be RFC3339"})
			return
		}

		// Idempotency precedence:
		// 1) Idempotency-Key header (recommended for retries)
		// 2) event_id in payload
		// 3) generated UUID (fallback; cannot dedupe client retries)
		eventID := c.GetHeader("Idempotency-Key")
		if eventID == "" {
			eventID = req.EventID
		}
		if eventID == "" {
			eventID = uuid.New().String()
		}

		inserted, err := svc.IngestEvent(c.Request.Context(), tenantID, models.Event{
			EventID:      eventID,
			ContactID:    req.ContactID,
			EventDT:      ts,
			Channel:      req.Channel,
			Persona:      req.Persona,
			Opened:       req.Opened,
			Clicked:      req.Clicked,
			Unsubscribed: req.Unsubscribed,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db insert failed"})
			return
		}

		// 201 for new events, 200 for duplicates (idempotent success).
		status := http.StatusCreated
		dup := false
		if !inserted {
			status = http.StatusOK
			dup = true
		}

		c.JSON(status, models.EventIngestResponse{
			EventID:   eventID,
			Duplicate: dup,
		})
	})

	r.POST("/contacts", func(c *gin.Context) {
		tenantID := auth.TenantID(c)

		var req models.ContactUpsertRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
		if strings.TrimSpace(req.ContactID) == "" || strings.TrimSpace(req.Persona) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "contact_id and persona required"})
			return
		}

		created := time.Now().UTC()
		if req.CreatedAt != "" {
			ts, err := parseTimestamp(req.CreatedAt)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "created_at must be RFC3339"})
				return
			}
			created = ts
		}

		contact := models.Contact{ContactID: req.ContactID, Persona: req.Persona, CreatedAt: created}
		if err := svc.UpsertContact(c.Request.Context(), tenantID, contact); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db upsert failed"})
			return
		}
		c.JSON(http.StatusOK, contact)
	})
}
