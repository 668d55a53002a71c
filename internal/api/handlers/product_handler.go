package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"swappy/backend/internal/models"
	"swappy/backend/internal/services"
)

// ProductHandler handles REST requests for products.
type ProductHandler struct {
	productService services.IProductService
}

func NewProductHandler(productService services.IProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// ListAll handles GET /api/products
func (h *ProductHandler) ListAll(c *gin.Context) {
	products, err := h.productService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// ListOwn handles GET /api/products/own
func (h *ProductHandler) ListOwn(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	products, err := h.productService.ListOwn(c.Request.Context(), caller)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Search handles GET /api/products/search?q=
func (h *ProductHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		respondBadRequest(c, "Query parameter q is required")
		return
	}
	docs, err := h.productService.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// GetByID handles GET /api/products/:id and counts the view.
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}
	product, err := h.productService.RecordView(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create handles POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBadRequest(c, "Invalid product data: "+err.Error())
		return
	}

	product, err := h.productService.Create(c.Request.Context(), caller, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Edit handles PATCH /api/products/:id
func (h *ProductHandler) Edit(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}
	var patch models.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondBadRequest(c, "Invalid product data: "+err.Error())
		return
	}

	product, err := h.productService.Edit(c.Request.Context(), productID, caller, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		return
	}
	productID, ok := parseIDParam(c, "id", "product")
	if !ok {
		return
	}
	if err := h.productService.Delete(c.Request.Context(), productID, caller); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
