package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/smartbookmark/bookmarkd/internal/httpserver/deps"
)

type componentStatus struct {
	OK           bool   `json:"ok"`
	Mode         string `json:"mode,omitempty"`
	Impact       string `json:"impact,omitempty"`
	LiveSessions *int   `json:"live_sessions,omitempty"`
	Error        string `json:"error,omitempty"`
}

type infraResponse struct {
	ServiceMode string                     `json:"service_mode"`
	Components  map[string]componentStatus `json:"components"`
}

// Infra reports the health of each backend component. Redis is the
// only hard dependency; the feed going down only degrades live views.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		redisStatus := checkRedis(d)

		sessions := 0
		if d.Hub != nil {
			sessions = d.Hub.Len()
		}

		components := map[string]componentStatus{
			"redis": redisStatus,
			"feed": {
				OK:     redisStatus.OK,
				Mode:   feedMode(redisStatus.OK),
				Impact: feedImpact(redisStatus.OK),
			},
			"sessions": {
				OK:           true,
				LiveSessions: &sessions,
			},
		}

		response := infraResponse{
			ServiceMode: determineServiceMode(components),
			Components:  components,
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

func determineServiceMode(components map[string]componentStatus) string {
	if rd, exists := components["redis"]; exists && !rd.OK {
		// No store means no reads and no writes.
		return "critical"
	}
	if fd, exists := components["feed"]; exists && !fd.OK {
		return "degraded"
	}
	return "live"
}

func feedMode(ok bool) string {
	if ok {
		return "pubsub"
	}
	return "snapshot-only"
}

func feedImpact(ok bool) string {
	if ok {
		return "change-streaming-enabled"
	}
	return "change-streaming-disabled"
}

func checkRedis(d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:    false,
			Mode:  "down",
			Error: "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:    false,
			Mode:  "down",
			Error: err.Error(),
		}
	}

	return componentStatus{
		OK:   true,
		Mode: "optimal",
	}
}
