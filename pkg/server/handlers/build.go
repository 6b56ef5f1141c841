package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/scholia"
	"github.com/soundprediction/scholia/pkg/server/dto"
)

// BuildHandler runs timetable builds submitted over HTTP.
type BuildHandler struct {
	scholia scholia.Scholia
	logger  *slog.Logger
}

// NewBuildHandler creates a new build handler
func NewBuildHandler(s scholia.Scholia, logger *slog.Logger) *BuildHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildHandler{scholia: s, logger: logger}
}

// BuildTimetable handles POST /api/v1/timetables. The build runs synchronously: the response is
// sent once every node and edge has been merged.
func (h *BuildHandler) BuildTimetable(c *gin.Context) {
	if h.scholia == nil {
		writeUnavailable(c)
		return
	}

	var req dto.BuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBadRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequest(c, err.Error())
		return
	}

	result, err := h.scholia.BuildTimetable(c.Request.Context(), req.Set(), req.Database, req.School)
	if err != nil {
		h.logger.Warn("Timetable build failed", "error", err)
		writeError(c, err)
		return
	}

	counts := make(map[string]int)
	for role, nodes := range result.Timetable {
		counts[role] = len(nodes)
	}
	for role, nodes := range result.Calendar {
		counts[role] = len(nodes)
	}

	resp := dto.BuildResponse{
		RunID:        result.RunID,
		DryRun:       result.DryRun,
		NodesWritten: result.NodesWritten,
		EdgesWritten: result.EdgesWritten,
		Counts:       counts,
		SkippedDays:  result.Report.SkippedDays,
		Ambiguities:  result.Report.Ambiguities,
	}
	if result.TimetableLayer != nil && result.TimetableLayer.Timetable != nil {
		resp.TimetableID = result.TimetableLayer.Timetable.UniqueID
	}

	status := http.StatusCreated
	if result.DryRun {
		status = http.StatusOK
	}
	c.JSON(status, dto.Result{Success: true, Data: resp})
}
