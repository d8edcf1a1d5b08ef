package http

import (
	"net/http"
	"time"

	"github.com/openlms/auth/pkg/httpx"
)

type HealthChecks struct {
	Directory string `json:"directory,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// LivezHandler reports that the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		}
		httpx.WriteJSON(w, http.StatusOK, response)
	}
}

// ReadyzHandler reports whether the gateway can serve auth flows, which
// means the directory has to answer its liveness probe.
func ReadyzHandler(startTime time.Time, version, directoryURL string) http.HandlerFunc {
	client := &http.Client{Timeout: 2 * time.Second}

	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{Directory: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, directoryURL+"/livez", nil)
		if err == nil {
			resp, probeErr := client.Do(req)
			if probeErr != nil {
				err = probeErr
			} else {
				resp.Body.Close()
				if resp.StatusCode != http.StatusOK {
					checks.Directory = "error: unexpected status"
					overallStatus = "degraded"
					statusCode = http.StatusServiceUnavailable
				}
			}
		}
		if err != nil {
			checks.Directory = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
