package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fleetops/internal/apierr"
	"fleetops/internal/middleware"
	"fleetops/internal/query"
)

const (
	defaultPage  = 1
	defaultLimit = 50
)

// filterSpec binds one query parameter to a document field predicate.
type filterSpec struct {
	param string
	field string
	op    query.Op
}

// Per-endpoint filter vocabularies. Equals params left blank by the client
// match everything, so the UI can always send its full filter form.
var (
	truckFilters = []filterSpec{
		{"status", "status", query.OpEquals},
		{"make", "make", query.OpEquals},
		{"fleet_id", "fleet_id", query.OpEquals},
		{"driver_id", "driver_id", query.OpEquals},
	}
	telemetryFilters = []filterSpec{
		{"truck_id", "truck_id", query.OpEquals},
		{"scenario", "scenario", query.OpEquals},
		{"min_speed", "speed_kmh", query.OpMin},
		{"max_speed", "speed_kmh", query.OpMax},
		{"from", "timestamp", query.OpDateRange},
		{"to", "timestamp", query.OpDateRange},
	}
	alertFilters = []filterSpec{
		{"truck_id", "truck_id", query.OpEquals},
		{"severity", "severity", query.OpEquals},
		{"status", "status", query.OpEquals},
		{"alert_type", "alert_type", query.OpEquals},
		{"from", "triggered_at", query.OpDateRange},
		{"to", "triggered_at", query.OpDateRange},
	}
	mlEventFilters = []filterSpec{
		{"truck_id", "truck_id", query.OpEquals},
		{"model_name", "model_name", query.OpEquals},
		{"hardware", "hardware_used", query.OpEquals},
		{"min_confidence", "confidence", query.OpMin},
		{"max_confidence", "confidence", query.OpMax},
		{"from", "timestamp", query.OpDateRange},
		{"to", "timestamp", query.OpDateRange},
	}
	healthFilters = []filterSpec{
		{"truck_id", "truck_id", query.OpEquals},
		{"status", "status", query.OpEquals},
		{"min_cpu", "resources.cpu_percent", query.OpMin},
		{"max_cpu", "resources.cpu_percent", query.OpMax},
		{"from", "timestamp", query.OpDateRange},
		{"to", "timestamp", query.OpDateRange},
	}
	otaUpdateFilters = []filterSpec{
		{"truck_id", "truck_id", query.OpEquals},
		{"fleet_id", "fleet_id", query.OpEquals},
		{"status", "status", query.OpEquals},
		{"target", "target", query.OpEquals},
		{"priority", "priority", query.OpEquals},
	}
	commandFilters = []filterSpec{
		{"truck_id", "truck_id", query.OpEquals},
		{"fleet_id", "fleet_id", query.OpEquals},
		{"status", "status", query.OpEquals},
		{"command_type", "command_type", query.OpEquals},
	}
)

// parseListParams translates list query parameters into a query pipeline
// invocation: the endpoint's filter vocabulary, sort_by/sort_dir, and
// page/limit with 1-indexed defaults. Malformed values are a
// ValidationFailure so they surface as 400s.
func parseListParams(c *gin.Context, specs []filterSpec) (query.Filter, query.Sort, int, int, error) {
	var f query.Filter
	for _, spec := range specs {
		raw, present := c.GetQuery(spec.param)
		if !present || raw == "" {
			continue
		}
		raw = middleware.SanitizeString(raw)
		switch spec.op {
		case query.OpEquals:
			f = append(f, query.Equals(spec.field, raw))
		case query.OpMin, query.OpMax:
			bound, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, query.Sort{}, 0, 0, apierr.New(apierr.ValidationFailure, "%s must be numeric, got %q", spec.param, raw)
			}
			if spec.op == query.OpMin {
				f = append(f, query.Min(spec.field, bound))
			} else {
				f = append(f, query.Max(spec.field, bound))
			}
		case query.OpDateRange:
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return nil, query.Sort{}, 0, 0, apierr.New(apierr.ValidationFailure, "%s must be RFC3339, got %q", spec.param, raw)
			}
			if spec.param == "from" {
				f = append(f, query.DateRange(spec.field, &ts, nil))
			} else {
				f = append(f, query.DateRange(spec.field, nil, &ts))
			}
		}
	}

	s := query.Sort{
		Field:      middleware.SanitizeString(c.Query("sort_by")),
		Descending: c.Query("sort_dir") == "desc",
	}

	page, err := intParam(c, "page", defaultPage)
	if err != nil {
		return nil, query.Sort{}, 0, 0, err
	}
	limit, err := intParam(c, "limit", defaultLimit)
	if err != nil {
		return nil, query.Sort{}, 0, 0, err
	}
	return f, s, page, limit, nil
}

func intParam(c *gin.Context, name string, fallback int) (int, error) {
	raw, present := c.GetQuery(name)
	if !present || raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apierr.New(apierr.ValidationFailure, "%s must be an integer, got %q", name, raw)
	}
	return n, nil
}
