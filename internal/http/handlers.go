package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"
)

type productPage func(*gin.Context, domain.PageParams) (domain.Page[domain.Product], error)

// servePage answers a paged product listing
func (s *Server) servePage(c *gin.Context, msg string, fetch productPage) {
	p, err := pageParams(c, 12, "createdAt", "desc")
	if err != nil {
		fail(c, err)
		return
	}
	page, err := fetch(c, p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, msg, page)
}

// @Summary List products
// @Tags products
// @Produce json
// @Param page query int false "Page index" default(0)
// @Param size query int false "Page size" default(12)
// @Param sortBy query string false "Sort field" default(createdAt)
// @Param sortDir query string false "asc or desc" default(desc)
// @Success 200 {object} response{data=domain.Page[domain.Product]}
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	s.servePage(c, "Products retrieved successfully", func(c *gin.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
		return s.products.List(c, repository.ProductFilter{}, p)
	})
}

// @Summary Search products by name or description
// @Tags products
// @Produce json
// @Param searchTerm query string true "Search term"
// @Success 200 {object} response{data=domain.Page[domain.Product]}
// @Failure 400 {object} response
// @Router /products/search [get]
func (s *Server) searchProducts(c *gin.Context) {
	s.servePage(c, "Product search completed", func(c *gin.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
		return s.products.Search(c, c.Query("searchTerm"), p)
	})
}

// @Summary Products within a price range
// @Tags products
// @Produce json
// @Param minPrice query number true "Lower bound"
// @Param maxPrice query number true "Upper bound"
// @Success 200 {object} response{data=domain.Page[domain.Product]}
// @Failure 400 {object} response
// @Router /products/price-range [get]
func (s *Server) productsByPriceRange(c *gin.Context) {
	min, err := decimal.NewFromString(c.Query("minPrice"))
	if err != nil {
		fail(c, service.ErrInvalidInput)
		return
	}
	max, err := decimal.NewFromString(c.Query("maxPrice"))
	if err != nil {
		fail(c, service.ErrInvalidInput)
		return
	}
	s.servePage(c, "Products retrieved by price range", func(c *gin.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
		return s.products.PriceRange(c, min, max, p)
	})
}

// @Summary Best rated products first
// @Tags products
// @Produce json
// @Success 200 {object} response{data=domain.Page[domain.Product]}
// @Router /products/top-rated [get]
func (s *Server) topRatedProducts(c *gin.Context) {
	s.servePage(c, "Top-rated products retrieved successfully", func(c *gin.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
		return s.products.TopRated(c, p)
	})
}

// @Summary Newest products first
// @Tags products
// @Produce json
// @Success 200 {object} response{data=domain.Page[domain.Product]}
// @Router /products/recent [get]
func (s *Server) recentProducts(c *gin.Context) {
	s.servePage(c, "Recent products retrieved successfully", func(c *gin.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
		return s.products.Recent(c, p)
	})
}

// @Summary Most reviewed products first
// @Tags products
// @Produce json
// @Success 200 {object} response{data=domain.Page[domain.Product]}
// @Router /products/most-reviewed [get]
func (s *Server) mostReviewedProducts(c *gin.Context) {
	s.servePage(c, "Most reviewed products retrieved successfully", func(c *gin.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
		return s.products.MostReviewed(c, p)
	})
}

// @Summary Products with stock left
// @Tags products
// @Produce json
// @Success 200 {object} response{data=domain.Page[domain.Product]}
// @Router /products/in-stock [get]
func (s *Server) inStockProducts(c *gin.Context) {
	s.servePage(c, "In-stock products retrieved successfully", func(c *gin.Context, p domain.PageParams) (domain.Page[domain.Product], error) {
		return s.products.InStock(c, p)
	})
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} response{data=domain.Product}
// @Failure 404 {object} response
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	p, err := s.products.GetByID(c, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Product retrieved successfully", p)
}

type createProductReq struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stockQuantity" binding:"min=0"`
	ImageURL      string          `json:"imageUrl"`
	Category      string          `json:"category"`
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Security Bearer
// @Param input body createProductReq true "Product"
// @Success 201 {object} response{data=domain.Product}
// @Failure 400 {object} response
// @Failure 403 {object} response
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.ErrInvalidInput)
		return
	}
	p, err := s.products.Create(c, domain.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
		Category:      req.Category,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Product created successfully", p)
}

// @Summary Overwrite the stock level of a product
// @Tags products
// @Produce json
// @Security Bearer
// @Param id path string true "Product ID"
// @Param quantity query int true "New stock level"
// @Success 200 {object} response{data=domain.Product}
// @Failure 400 {object} response
// @Failure 404 {object} response
// @Router /products/{id}/stock [put]
func (s *Server) updateStock(c *gin.Context) {
	qty, err := strconv.Atoi(c.Query("quantity"))
	if err != nil {
		fail(c, service.ErrInvalidInput)
		return
	}
	p, err := s.products.SetStock(c, c.Param("id"), qty)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Product stock updated successfully", p)
}

type orderLineReq struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type createOrderReq struct {
	OrderItems      []orderLineReq `json:"orderItems" binding:"required,min=1,dive"`
	DeliveryAddress string         `json:"deliveryAddress" binding:"required,min=10,max=500"`
	ContactNumber   string         `json:"contactNumber" binding:"required,phone"`
	OrderNotes      string         `json:"orderNotes" binding:"max=500"`
}

// @Summary Place an order
// @Tags orders
// @Accept json
// @Produce json
// @Security Bearer
// @Param input body createOrderReq true "Order"
// @Success 201 {object} response{data=domain.Order}
// @Failure 400 {object} response
// @Failure 401 {object} response
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, response{Message: "Validation failed"})
		return
	}
	in := domain.CreateOrderRequest{
		OrderItems:      make([]domain.OrderItemRequest, 0, len(req.OrderItems)),
		DeliveryAddress: req.DeliveryAddress,
		ContactNumber:   req.ContactNumber,
		OrderNotes:      req.OrderNotes,
	}
	for _, l := range req.OrderItems {
		in.OrderItems = append(in.OrderItems, domain.OrderItemRequest{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	o, err := s.orders.CreateOrder(c, currentUser(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Order created successfully", o)
}

func (s *Server) serveOrders(c *gin.Context, fetch func(domain.PageParams) (domain.Page[domain.Order], error)) {
	p, err := pageParams(c, 10, "orderDate", "desc")
	if err != nil {
		fail(c, err)
		return
	}
	page, err := fetch(p)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Orders retrieved successfully", page)
}

// @Summary Orders of the signed-in customer
// @Tags orders
// @Produce json
// @Security Bearer
// @Success 200 {object} response{data=domain.Page[domain.Order]}
// @Router /orders/my-orders [get]
func (s *Server) myOrders(c *gin.Context) {
	s.serveOrders(c, func(p domain.PageParams) (domain.Page[domain.Order], error) {
		return s.orders.MyOrders(c, currentUser(c), p)
	})
}

// @Summary Every order
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} response{data=domain.Page[domain.Order]}
// @Failure 403 {object} response
// @Router /orders/admin/all [get]
func (s *Server) allOrders(c *gin.Context) {
	s.serveOrders(c, func(p domain.PageParams) (domain.Page[domain.Order], error) {
		return s.orders.AllOrders(c, p)
	})
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Security Bearer
// @Param id path string true "Order ID"
// @Success 200 {object} response{data=domain.Order}
// @Failure 403 {object} response
// @Failure 404 {object} response
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	o, err := s.orders.GetOrder(c, currentUser(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Order retrieved successfully", o)
}

// @Summary Move an order to a new status
// @Tags admin
// @Produce json
// @Security Bearer
// @Param id path string true "Order ID"
// @Param status query string true "PENDING, PROCESSING, SHIPPED, DELIVERED or CANCELLED"
// @Success 200 {object} response{data=domain.Order}
// @Failure 400 {object} response
// @Failure 404 {object} response
// @Failure 409 {object} response
// @Router /orders/{id}/status [put]
func (s *Server) updateOrderStatus(c *gin.Context) {
	st, err := domain.ParseOrderStatus(c.Query("status"))
	if err != nil {
		fail(c, service.ErrInvalidInput)
		return
	}
	o, err := s.orders.UpdateStatus(c, c.Param("id"), st)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Order status updated successfully", o)
}

// @Summary Order statistics
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} response{data=domain.OrderStats}
// @Router /orders/admin/statistics [get]
func (s *Server) orderStats(c *gin.Context) {
	st, err := s.orders.Stats(c)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Order statistics retrieved successfully", st)
}
