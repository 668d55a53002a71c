package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"swappy/backend/internal/apperr"
	"swappy/backend/internal/models"
	"swappy/backend/internal/services"
)

// SwapHandler handles REST requests for swap proposals.
type SwapHandler struct {
	swapService services.ISwapService
}

func NewSwapHandler(swapService services.ISwapService) *SwapHandler {
	return &SwapHandler{swapService: swapService}
}

// Propose handles POST /api/swaps
func (h *SwapHandler) Propose(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var proposal models.SwapProposal
	if err := c.ShouldBindJSON(&proposal); err != nil {
		respondBadRequest(c, "Invalid swap proposal: "+err.Error())
		return
	}
	productID, err := models.ParseID(proposal.ProductID)
	if err != nil {
		respondError(c, apperr.NotFound("product", proposal.ProductID))
		return
	}

	swap, err := h.swapService.Propose(c.Request.Context(), productID, caller, proposal)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, swap)
}

// GetByID handles GET /api/swaps/:id
func (h *SwapHandler) GetByID(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	swapID, ok := parseIDParam(c, "id", "swap")
	if !ok {
		return
	}
	swap, err := h.swapService.View(c.Request.Context(), swapID, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, swap)
}

// UpdateStatus handles PATCH /api/swaps/:id
func (h *SwapHandler) UpdateStatus(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	swapID, ok := parseIDParam(c, "id", "swap")
	if !ok {
		return
	}
	var update models.SwapStatusUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, "swap_status is required")
		return
	}

	swap, err := h.swapService.Transition(c.Request.Context(), swapID, caller, update.SwapStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, swap)
}

// ListByProduct handles GET /api/swaps/product/:id. The seller sees every
// swap on the product, anyone else only their own proposals.
func (h *SwapHandler) ListByProduct(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}
	swaps, err := h.swapService.ListVisibleTo(c.Request.Context(), productID, caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, swaps)
}

// ListAsSeller handles GET /api/swaps/seller
func (h *SwapHandler) ListAsSeller(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	swaps, err := h.swapService.ListAsSeller(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, swaps)
}

// ListAsBuyer handles GET /api/swaps/buyer
func (h *SwapHandler) ListAsBuyer(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	swaps, err := h.swapService.ListAsBuyer(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, swaps)
}
