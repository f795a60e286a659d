package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/api/middleware"
	"reviewhub/internal/services"
	"reviewhub/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
}

func NewProductHandler(productService *services.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) List(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", services.DefaultPageSize)

	response, err := h.productService.List(c.Request.Context(), page, limit)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "products retrieved successfully", response)
}

func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := paramUint(c, "product_id")
	if !ok {
		utils.SendValidationError(c, "invalid product ID")
		return
	}

	product, err := h.productService.Get(c.Request.Context(), productID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "product retrieved successfully", product)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req services.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request data")
		return
	}

	product, err := h.productService.Create(c.Request.Context(), middleware.Actor(c), req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendCreated(c, "product created successfully", product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := paramUint(c, "product_id")
	if !ok {
		utils.SendValidationError(c, "invalid product ID")
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request data")
		return
	}

	product, err := h.productService.Update(c.Request.Context(), middleware.Actor(c), productID, req)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendSuccess(c, "product updated successfully", product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := paramUint(c, "product_id")
	if !ok {
		utils.SendValidationError(c, "invalid product ID")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), middleware.Actor(c), productID); err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProductHandler) UploadImages(c *gin.Context) {
	productID, ok := paramUint(c, "product_id")
	if !ok {
		utils.SendValidationError(c, "invalid product ID")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.SendValidationError(c, "multipart form with images required")
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		utils.SendValidationError(c, "at least one image is required")
		return
	}

	images, err := h.productService.UploadImages(c.Request.Context(), middleware.Actor(c), productID, files)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	utils.SendCreated(c, "images uploaded successfully", images)
}
