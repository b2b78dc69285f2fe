package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/core/trust"
)

// ProductHandler serves the public catalog and vendor listings.
type ProductHandler struct {
	service ports.ProductService
}

func NewProductHandler(service ports.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// List handles GET /v1/products.
//
// @Summary      Browse the catalog
// @Tags         products
// @Produce      json
// @Param        category   query     string   false  "Category"
// @Param        in_stock   query     bool     false  "Only in-stock products"
// @Param        on_sale    query     bool     false  "Only discounted products"
// @Param        min_price  query     number   false  "Minimum price"
// @Param        max_price  query     number   false  "Maximum price"
// @Param        min_trust  query     number   false  "Minimum vendor trust score (1-5)"
// @Param        search     query     string   false  "Name search"
// @Param        sort       query     string   false  "newest, price-low, price-high, name, trust-high"
// @Param        page       query     int      false  "Page (default 1)"
// @Param        limit      query     int      false  "Page size (default 20, max 100)"
// @Success      200        {object}  productListResponse
// @Failure      400        {object}  errorResponse
// @Router       /v1/products [get]
func (h *ProductHandler) List(c echo.Context) error {
	var f ports.ProductFilter
	if err := echo.QueryParamsBinder(c).
		String("category", &f.Category).
		Bool("in_stock", &f.InStockOnly).
		Bool("on_sale", &f.OnSaleOnly).
		Float64("min_price", &f.MinPrice).
		Float64("max_price", &f.MaxPrice).
		Float64("min_trust", &f.MinTrust).
		String("search", &f.Search).
		String("sort", &f.Sort).
		Int("page", &f.Page).
		Int("limit", &f.Limit).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if f.MinTrust < 0 || f.MinTrust > 5 {
		return echo.NewHTTPError(http.StatusBadRequest, "min_trust must be between 0 and 5")
	}

	page, err := h.service.ListProducts(c.Request().Context(), f)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, productListResponse{
		Items:      toProductResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	})
}

// Get handles GET /v1/products/:slug.
//
// @Summary      Product detail
// @Tags         products
// @Produce      json
// @Param        slug  path      string  true  "Product slug"
// @Success      200   {object}  productResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/products/{slug} [get]
func (h *ProductHandler) Get(c echo.Context) error {
	view, err := h.service.GetProduct(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(*view))
}

// Create handles POST /v1/vendor/products.
//
// @Summary      Create a product listing
// @Tags         vendor
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  productResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /v1/vendor/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createProductRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	inStock := true
	if req.InStock != nil {
		inStock = *req.InStock
	}

	product, err := h.service.CreateProduct(c.Request().Context(), actor, ports.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		InStock:       inStock,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toProductResponse(ports.ProductView{
		Product: product,
		Tier:    trust.Classify(product.TrustScore),
	}))
}

// VendorList handles GET /v1/vendor/products.
//
// @Summary      The caller's own listings
// @Tags         vendor
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   productResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/vendor/products [get]
func (h *ProductHandler) VendorList(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	views, err := h.service.ListVendorProducts(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponses(views))
}
