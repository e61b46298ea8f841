package fakeapi

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"saas-pos/internal/domain"
)

type createCartRequest struct {
	CustomerID *string `json:"customerId" binding:"omitempty,min=1"`
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity" binding:"required,gte=0"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"`
}

type checkoutRequest struct {
	CustomerID *string `json:"customerId" binding:"omitempty,min=1"`
}

type issueRequest struct {
	DocType string `json:"docType" binding:"required,doctype"`
	Mode    string `json:"mode" binding:"required,oneof=INTERNAL ARCA"`
}

var registerOnce sync.Once

func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			d, err := domain.ParseDocType(s)
			return err == nil && string(d) == s
		})
	})
}

// NewRouter wires the branch endpoints onto a gin engine.
func NewRouter(store *Store, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	registerValidators()

	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Disposition"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: false,
	}))

	router.GET("/healthz", healthHandler)

	h := &handlers{store: store}
	b := router.Group("/branches/:branchId", authMiddleware(store.token))
	b.GET("/carts/current", h.getCurrentCart)
	b.POST("/carts/current", h.postCurrentCart)
	b.GET("/carts/:cartId", h.getCart)
	b.POST("/carts/:cartId/items", h.addItem)
	b.PATCH("/carts/:cartId/items/:productId", h.updateItem)
	b.DELETE("/carts/:cartId/items/:productId", h.removeItem)
	b.POST("/carts/:cartId/checkout", h.checkout)
	b.GET("/invoices/:invoiceId", h.getInvoice)
	b.POST("/invoices/:invoiceId/issue", h.issue)
	b.GET("/invoices/:invoiceId/pdf", h.pdf)

	return router
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func authMiddleware(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || got != token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing or invalid token"})
			return
		}
		c.Next()
	}
}

type handlers struct {
	store *Store
}

func writeError(c *gin.Context, err error) {
	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.status, gin.H{"message": apiErr.msg})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
}

// bindOptional binds a JSON body that may be absent.
func bindOptional(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return false
	}
	return true
}

func bindRequired(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return false
	}
	return true
}

func writeCart(c *gin.Context, cart *domain.Cart) {
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) getCurrentCart(c *gin.Context) {
	cart, err := h.store.CurrentCart(c.Param("branchId"), false, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	writeCart(c, cart)
}

func (h *handlers) postCurrentCart(c *gin.Context) {
	var req createCartRequest
	if !bindOptional(c, &req) {
		return
	}
	cart, err := h.store.CurrentCart(c.Param("branchId"), true, req.CustomerID)
	if err != nil {
		writeError(c, err)
		return
	}
	writeCart(c, cart)
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.store.Cart(c.Param("branchId"), c.Param("cartId"))
	if err != nil {
		writeError(c, err)
		return
	}
	writeCart(c, cart)
}

func (h *handlers) addItem(c *gin.Context) {
	var req addItemRequest
	if !bindRequired(c, &req) {
		return
	}
	if err := h.store.AddItem(c.Param("branchId"), c.Param("cartId"), req.ProductID, *req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) updateItem(c *gin.Context) {
	var req updateItemRequest
	if !bindRequired(c, &req) {
		return
	}
	if err := h.store.SetQuantity(c.Param("branchId"), c.Param("cartId"), c.Param("productId"), *req.Quantity); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) removeItem(c *gin.Context) {
	if err := h.store.RemoveItem(c.Param("branchId"), c.Param("cartId"), c.Param("productId")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) checkout(c *gin.Context) {
	var req checkoutRequest
	if !bindOptional(c, &req) {
		return
	}
	res, err := h.store.Checkout(c.Param("branchId"), c.Param("cartId"), req.CustomerID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) getInvoice(c *gin.Context) {
	inv, err := h.store.Invoice(c.Param("branchId"), c.Param("invoiceId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *handlers) issue(c *gin.Context) {
	var req issueRequest
	if !bindRequired(c, &req) {
		return
	}
	err := h.store.Issue(c.Param("branchId"), c.Param("invoiceId"), domain.DocType(req.DocType), domain.InvoiceMode(req.Mode))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) pdf(c *gin.Context) {
	content, filename, err := h.store.PDF(c.Param("branchId"), c.Param("invoiceId"), c.DefaultQuery("variant", "internal"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", content)
}
