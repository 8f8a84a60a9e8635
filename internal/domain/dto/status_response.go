package dto

import "time"

// StatusResponse represents the JSON structure returned by GET /api/v1/status.
//
// swagger:model StatusResponse
type StatusResponse struct {
	State           string     `json:"state" example:"running"`                             // stopped, running or paused
	IntervalMinutes int        `json:"interval_minutes" example:"5"`                        // Extraction frequency
	OutputFolder    string     `json:"output_folder" example:"extractions"`                 // Where extraction files are written
	Source          string     `json:"source" example:"generator"`                          // Upstream trade source kind
	RetryDelayMs    int64      `json:"retry_delay_ms" example:"5000"`                       // Delay before re-running a failed cycle
	MaxAttempts     int        `json:"max_attempts" example:"0"`                            // 0 means retry until the upstream answers
	Succeeded       uint64     `json:"succeeded" example:"12"`                              // Artifacts written since start
	Failed          uint64     `json:"failed" example:"1"`                                  // Failed upstream fetches since start
	Skipped         uint64     `json:"skipped" example:"0"`                                 // Cycles skipped while paused
	LastArtifact    string     `json:"last_artifact,omitempty" example:"20240331_1005.csv"` // Most recent file written
	LastSuccess     *time.Time `json:"last_success,omitempty" example:"2024-03-31T10:05:00Z"`
}

// ExtractionResponse describes one extraction file listed by GET /api/v1/extractions.
//
// swagger:model ExtractionResponse
type ExtractionResponse struct {
	Name       string    `json:"name" example:"20240331_1005.csv"`
	Size       int64     `json:"size" example:"412"`
	ModifiedAt time.Time `json:"modified_at" example:"2024-03-31T10:05:00Z"`
}

// ActionResponse is returned by the lifecycle endpoints.
//
// swagger:model ActionResponse
type ActionResponse struct {
	State string `json:"state" example:"paused"`
}
