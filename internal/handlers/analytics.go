package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/campaign-analytics-service/internal/analytics"
	"github.com/PratikDhanave/campaign-analytics-service/internal/auth"
	"github.com/PratikDhanave/campaign-analytics-service/internal/dataset"
	"github.com/PratikDhanave/campaign-analytics-service/internal/models"
	"github.com/PratikDhanave/campaign-analytics-service/internal/service"
)

const (
	defaultInsightLimit = 300
	maxInsightLimit     = 10000
)

// RegisterAnalyticsRoutes registers the serving-path endpoints.
//
// All of them accept the shared filter: persona, channel (repeatable or comma
// separated), from and to (RFC3339 or YYYY-MM-DD, inclusive).
//
// GET /kpis?ai=true           KPI snapshot, raw and as displayed
// GET /insights?limit=300     per-contact fatigue and engagement
// GET /segments/fatigued      CSV download
// GET /segments/high-engagement
// GET /personas, GET /channels
func RegisterAnalyticsRoutes(r gin.IRoutes, svc CampaignAPI) {
	r.GET("/kpis", func(c *gin.Context) {
		f, ok := bindFilter(c)
		if !ok {
			return
		}
		aiOn, err := parseAI(c, svc.AIEnabledByDefault())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		dash, err := svc.Dashboard(c.Request.Context(), auth.TenantID(c), f, aiOn)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}
		c.JSON(http.StatusOK, dash)
	})

	r.GET("/insights", func(c *gin.Context) {
		f, ok := bindFilter(c)
		if !ok {
			return
		}
		limit, err := parseIntParam(c, "limit", defaultInsightLimit, 1, maxInsightLimit)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		insights, err := svc.Insights(c.Request.Context(), auth.TenantID(c), f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}

		res := models.InsightsResponse{
			Fatigued:       len(analytics.FatiguedSegment(insights)),
			HighEngagement: len(analytics.HighEngagementSegment(insights, analytics.HighEngagementScore)),
			Total:          len(insights),
			Insights:       insights,
		}
		if len(insights) > limit {
			res.Insights = insights[:limit]
		}
		c.JSON(http.StatusOK, res)
	})

	r.GET("/segments/:kind", func(c *gin.Context) {
		kind := service.SegmentKind(c.Param("kind"))
		var filename string
		switch kind {
		case service.SegmentFatigued:
			filename = "fatigued_segment.csv"
		case service.SegmentHighEngagement:
			filename = "high_engagement_segment.csv"
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown segment"})
			return
		}

		f, ok := bindFilter(c)
		if !ok {
			return
		}
		segment, err := svc.Segment(c.Request.Context(), auth.TenantID(c), f, kind)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}

		var buf bytes.Buffer
		if err := dataset.WriteInsights(&buf, segment); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "csv encoding failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
	})

	r.GET("/personas", func(c *gin.Context) {
		personas, err := svc.Personas(c.Request.Context(), auth.TenantID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"personas": personas})
	})

	r.GET("/channels", func(c *gin.Context) {
		channels, err := svc.Channels(c.Request.Context(), auth.TenantID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"channels": channels})
	})
}

// bindFilter parses the shared filter and writes a 400 on failure.
func bindFilter(c *gin.Context) (analytics.Filter, bool) {
	f, err := parseFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return analytics.Filter{}, false
	}
	return f, true
}
