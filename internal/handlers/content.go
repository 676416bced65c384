package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/campaign-analytics-service/internal/auth"
	"github.com/PratikDhanave/campaign-analytics-service/internal/brief"
)

const (
	defaultSeed     = 42
	maxSeed         = 999
	maxSubjectLines = 50
)

// RegisterContentRoutes registers the subject line lab and the executive brief.
//
// GET /subject-lines?persona=...&n=6&seed=42
// GET /brief?format=md|pdf&ai=true plus the shared filter
func RegisterContentRoutes(r gin.IRoutes, svc CampaignAPI) {
	r.GET("/subject-lines", func(c *gin.Context) {
		persona := strings.TrimSpace(c.Query("persona"))
		if persona == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "persona required"})
			return
		}
		n, err := parseIntParam(c, "n", svc.SubjectLineCount(), 1, maxSubjectLines)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		seed, err := parseIntParam(c, "seed", defaultSeed, 0, maxSeed)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, svc.SubjectLines(persona, n, int64(seed)))
	})

	r.GET("/brief", func(c *gin.Context) {
		f, ok := bindFilter(c)
		if !ok {
			return
		}
		aiOn, err := parseAI(c, svc.AIEnabledByDefault())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		doc, err := svc.Brief(c.Request.Context(), auth.TenantID(c), f, aiOn, brief.ParseFormat(c.Query("format")))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "brief generation failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
		c.Data(http.StatusOK, doc.ContentType, doc.Data)
	})
}
