package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/athabaska/Gazprom-power/internal/domain/dto"
	"github.com/athabaska/Gazprom-power/internal/extraction"
	"github.com/athabaska/Gazprom-power/internal/middleware"
	"github.com/athabaska/Gazprom-power/internal/scheduler"
	"github.com/athabaska/Gazprom-power/internal/storage"
)

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

// Lifecycle is the scheduler surface driven over HTTP. The Try variants
// report a rejected transition instead of logging it.
type Lifecycle interface {
	scheduler.Controller
	TryPause() error
	TryContinue() error
	Trigger() error
}

// StatsSource reports what the extraction cycle has done so far.
type StatsSource interface {
	Stats() extraction.Stats
}

// ArtifactLister lists written extraction files, newest first.
type ArtifactLister interface {
	List(limit int) ([]storage.Artifact, error)
}

// Settings are the static values reported by GET /api/v1/status.
type Settings struct {
	IntervalMinutes int
	OutputFolder    string
	Source          string
	RetryDelayMs    int64
	MaxAttempts     int
}

// Handler exposes the scheduler lifecycle and the extraction history over HTTP.
type Handler struct {
	ctl      Lifecycle
	stats    StatsSource
	lister   ArtifactLister
	settings Settings
}

// NewHandler constructs a Handler.
func NewHandler(ctl Lifecycle, stats StatsSource, lister ArtifactLister, settings Settings) *Handler {
	return &Handler{ctl: ctl, stats: stats, lister: lister, settings: settings}
}

// GetStatus godoc
// @Summary      Scheduler status
// @Description  Returns the scheduler state, its settings and extraction counters
// @Tags         extraction
// @Produce      json
// @Success      200  {object}  dto.StatusResponse
// @Router       /api/v1/status [get]
func (h *Handler) GetStatus(c *gin.Context) {
	st := h.stats.Stats()
	resp := dto.StatusResponse{
		State:           string(h.ctl.State()),
		IntervalMinutes: h.settings.IntervalMinutes,
		OutputFolder:    h.settings.OutputFolder,
		Source:          h.settings.Source,
		RetryDelayMs:    h.settings.RetryDelayMs,
		MaxAttempts:     h.settings.MaxAttempts,
		Succeeded:       st.Succeeded,
		Failed:          st.Failed,
		Skipped:         st.Skipped,
		LastArtifact:    st.LastArtifact,
	}
	if !st.LastSuccess.IsZero() {
		last := st.LastSuccess
		resp.LastSuccess = &last
	}
	c.JSON(http.StatusOK, resp)
}

// Pause godoc
// @Summary      Pause extraction
// @Description  Scheduled cycles keep firing but do nothing until continued
// @Tags         extraction
// @Produce      json
// @Success      200  {object}  dto.ActionResponse
// @Failure      409  {object}  dto.ErrorResponse  "Scheduler is not running"
// @Router       /api/v1/pause [post]
func (h *Handler) Pause(c *gin.Context) {
	if err := h.ctl.TryPause(); err != nil {
		middleware.AbortWithError(c, http.StatusConflict, "scheduler is not running", err)
		return
	}
	c.JSON(http.StatusOK, dto.ActionResponse{State: string(h.ctl.State())})
}

// Continue godoc
// @Summary      Continue extraction
// @Description  Lifts a pause; the next tick runs a full cycle
// @Tags         extraction
// @Produce      json
// @Success      200  {object}  dto.ActionResponse
// @Failure      409  {object}  dto.ErrorResponse  "Scheduler is not paused"
// @Router       /api/v1/continue [post]
func (h *Handler) Continue(c *gin.Context) {
	if err := h.ctl.TryContinue(); err != nil {
		middleware.AbortWithError(c, http.StatusConflict, "scheduler is not paused", err)
		return
	}
	c.JSON(http.StatusOK, dto.ActionResponse{State: string(h.ctl.State())})
}

// TriggerExtraction godoc
// @Summary      Run an extraction now
// @Description  Starts one cycle outside the timer. The cycle runs in the background.
// @Tags         extraction
// @Produce      json
// @Success      202  {object}  dto.ActionResponse
// @Failure      409  {object}  dto.ErrorResponse  "Scheduler is stopped or paused"
// @Router       /api/v1/extractions [post]
func (h *Handler) TriggerExtraction(c *gin.Context) {
	if err := h.ctl.Trigger(); err != nil {
		middleware.AbortWithError(c, http.StatusConflict, "extraction not started", err)
		return
	}
	c.JSON(http.StatusAccepted, dto.ActionResponse{State: string(h.ctl.State())})
}

// ListExtractions godoc
// @Summary      List extraction files
// @Description  Returns the newest extraction files in the output folder
// @Tags         extraction
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of files (1-500)"  default(20)
// @Success      200    {array}   dto.ExtractionResponse
// @Failure      400    {object}  dto.ErrorResponse  "Bad Request"
// @Failure      500    {object}  dto.ErrorResponse  "Internal Error"
// @Router       /api/v1/extractions [get]
func (h *Handler) ListExtractions(c *gin.Context) {
	limit := defaultListLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > maxListLimit {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("limit must be an integer between 1 and 500", err))
			return
		}
		limit = n
	}

	artifacts, err := h.lister.List(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to list extractions", err))
		return
	}

	out := make([]dto.ExtractionResponse, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, dto.ExtractionResponse{Name: a.Name, Size: a.Size, ModifiedAt: a.ModTime})
	}
	c.JSON(http.StatusOK, out)
}
