package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/campaign-analytics-service/internal/analytics"
)

const dateLayout = "2006-01-02"

// parseTimestamp parses an RFC3339 timestamp and normalizes it to UTC.
func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseBound accepts RFC3339 or YYYY-MM-DD. A date-only upper bound covers the whole day.
func parseBound(s string, upper bool) (time.Time, error) {
	if t, err := parseTimestamp(s); err == nil {
		return t, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.New("must be RFC3339 or YYYY-MM-DD")
	}
	if upper {
		return d.Add(24*time.Hour - time.Nanosecond), nil
	}
	return d, nil
}

// queryList reads a repeatable, comma separated query parameter.
func queryList(c *gin.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryArray(name) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// parseFilter builds the persona/channel/date filter shared by the analytics endpoints.
func parseFilter(c *gin.Context) (analytics.Filter, error) {
	f := analytics.Filter{
		Personas: queryList(c, "persona"),
		Channels: queryList(c, "channel"),
	}
	if s := c.Query("from"); s != "" {
		from, err := parseBound(s, false)
		if err != nil {
			return analytics.Filter{}, fmt.Errorf("from %w", err)
		}
		f.From = &from
	}
	if s := c.Query("to"); s != "" {
		to, err := parseBound(s, true)
		if err != nil {
			return analytics.Filter{}, fmt.Errorf("to %w", err)
		}
		f.To = &to
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return analytics.Filter{}, errors.New("from must be <= to")
	}
	return f, nil
}

// parseAI reads the ai toggle, falling back to def.
func parseAI(c *gin.Context, def bool) (bool, error) {
	s := c.Query("ai")
	if s == "" {
		return def, nil
	}
	on, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("ai must be a boolean")
	}
	return on, nil
}

// parseIntParam reads an integer query parameter within [lo,hi].
func parseIntParam(c *gin.Context, name string, def, lo, hi int) (int, error) {
	s := c.Query(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer in [%d, %d]", name, lo, hi)
	}
	return n, nil
}
