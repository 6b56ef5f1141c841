package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/scholia"
	"github.com/soundprediction/scholia/pkg/server/dto"
	"github.com/soundprediction/scholia/pkg/types"
)

// MaxListLimit caps the limit query parameter of node listings.
const MaxListLimit = 1000

// GraphHandler serves read-back queries over the built graph.
type GraphHandler struct {
	scholia scholia.Scholia
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(s scholia.Scholia) *GraphHandler {
	return &GraphHandler{scholia: s}
}

// GetNode handles GET /api/v1/nodes/:unique_id
func (h *GraphHandler) GetNode(c *gin.Context) {
	if h.scholia == nil {
		writeUnavailable(c)
		return
	}
	node, err := h.scholia.GetNode(c.Request.Context(), c.Param("unique_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: node})
}

// ListNodes handles GET /api/v1/nodes?kind=AcademicDay&limit=50
func (h *GraphHandler) ListNodes(c *gin.Context) {
	if h.scholia == nil {
		writeUnavailable(c)
		return
	}

	var kind types.NodeKind
	if raw := c.Query("kind"); raw != "" {
		k, err := types.ParseKind(raw)
		if err != nil {
			writeError(c, err)
			return
		}
		kind = k
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeBadRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	nodes, err := h.scholia.ListNodes(c.Request.Context(), kind, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if nodes == nil {
		nodes = []*types.Node{}
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: dto.NodeList{
		Kind:  string(kind),
		Total: len(nodes),
		Nodes: nodes,
	}})
}

// GetNeighbors handles GET /api/v1/nodes/:unique_id/neighbors
func (h *GraphHandler) GetNeighbors(c *gin.Context) {
	if h.scholia == nil {
		writeUnavailable(c)
		return
	}
	ctx := c.Request.Context()
	id := c.Param("unique_id")

	// An unknown node is a 404, not an empty neighbour list.
	if _, err := h.scholia.GetNode(ctx, id); err != nil {
		writeError(c, err)
		return
	}
	neighbors, err := h.scholia.GetNeighbors(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if neighbors == nil {
		neighbors = []types.Neighbor{}
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: neighbors})
}

// GetStats handles GET /api/v1/stats
func (h *GraphHandler) GetStats(c *gin.Context) {
	if h.scholia == nil {
		writeUnavailable(c)
		return
	}
	stats, err := h.scholia.GetStats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Result{Success: true, Data: stats})
}
