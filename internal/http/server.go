// Package httpapi serves an in-memory storefront backend speaking the same REST
// contract as the production API. It backs the sandbox command and the client tests.
package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"
)

const userKey = "storefront.user"

type Server struct {
	engine   *gin.Engine
	products *service.ProductService
	orders   *service.OrderService
	auth     *service.AuthService
	faults   *Faults
	log      logrus.FieldLogger
}

func NewServer(products *service.ProductService, orders *service.OrderService, auth *service.AuthService, log logrus.FieldLogger) *Server {
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	registerValidators()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	s := &Server{
		engine:   r,
		products: products,
		orders:   orders,
		auth:     auth,
		faults:   &Faults{},
		log:      log.WithField("component", "sandbox"),
	}
	r.Use(s.requestLogger(), gin.Recovery(), s.faults.middleware())
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

// Faults exposes the failure injector of this server
func (s *Server) Faults() *Faults { return s.faults }

func (s *Server) registerRoutes() {
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := s.engine.Group("/api")
	{
		products := api.Group("/products")
		products.GET("", s.listProducts)
		products.GET("/search", s.searchProducts)
		products.GET("/price-range", s.productsByPriceRange)
		products.GET("/top-rated", s.topRatedProducts)
		products.GET("/recent", s.recentProducts)
		products.GET("/most-reviewed", s.mostReviewedProducts)
		products.GET("/in-stock", s.inStockProducts)
		products.GET("/:id", s.getProduct)
		products.POST("", s.authenticate, s.requireRole(domain.RoleAdmin), s.createProduct)
		products.PUT("/:id/stock", s.authenticate, s.requireRole(domain.RoleAdmin), s.updateStock)

		orders := api.Group("/orders", s.authenticate)
		orders.POST("", s.requireRole(domain.RoleCustomer), s.createOrder)
		orders.GET("/my-orders", s.requireRole(domain.RoleCustomer), s.myOrders)
		orders.GET("/admin/all", s.requireRole(domain.RoleAdmin), s.allOrders)
		orders.GET("/admin/statistics", s.requireRole(domain.RoleAdmin), s.orderStats)
		orders.GET("/:id", s.getOrder)
		orders.PUT("/:id/status", s.requireRole(domain.RoleAdmin), s.updateOrderStatus)

		auth := api.Group("/auth")
		auth.POST("/login", s.login)
		auth.POST("/register", s.register)
		auth.POST("/refresh", s.refresh)
		auth.POST("/validate", s.validate)
		auth.POST("/logout", s.logout)
	}
}

// response is the envelope every endpoint answers with
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, response{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, err error) {
	status := mapErrorToStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "An unexpected error occurred"
	}
	c.AbortWithStatusJSON(status, response{Success: false, Message: msg})
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrNotEnoughStock),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrBadCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// authenticate resolves the bearer token to a user or answers 401
func (s *Server) authenticate(c *gin.Context) {
	u, err := s.auth.Authenticate(c, bearer(c))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response{Message: "Unauthorized"})
		return
	}
	c.Set(userKey, u)
	c.Next()
}

func (s *Server) requireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, response{Message: "Access denied"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	u, _ := c.MustGet(userKey).(domain.User)
	return u
}

func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Debug("request")
	}
}

// pageParams reads page, size, sortBy and sortDir with per-endpoint defaults
func pageParams(c *gin.Context, size int, sortBy, sortDir string) (domain.PageParams, error) {
	var p domain.PageParams
	var err error
	if v := c.Query("page"); v != "" {
		if p.Page, err = strconv.Atoi(v); err != nil || p.Page < 0 {
			return p, service.ErrInvalidInput
		}
	}
	if v := c.Query("size"); v != "" {
		if p.Size, err = strconv.Atoi(v); err != nil || p.Size < 1 || p.Size > 100 {
			return p, service.ErrInvalidInput
		}
	}
	p.SortBy = c.Query("sortBy")
	p.SortDir = c.Query("sortDir")
	return p.WithDefaults(size, sortBy, sortDir), nil
}

var registerOnce sync.Once

// registerValidators adds the rules the binding tags of this package rely on to gin's
// shared validator
func registerValidators() {
	registerOnce.Do(func() {
		v, isValidator := binding.Validator.Engine().(*validator.Validate)
		if !isValidator {
			return
		}
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return domain.IsContactNumber(strings.TrimSpace(fl.Field().String()))
		})
	})
}
