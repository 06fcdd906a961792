package httpserver

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"licensestore/internal/domain"
	adminrepo "licensestore/internal/repository/admin"
	adminsvc "licensestore/internal/service/admin"
	customersvc "licensestore/internal/service/customer"
)

// Deps bundles everything the handlers call. Interfaces are declared on the
// consumer side so tests can stub any slice of the stack.
type Deps struct {
	Catalog  catalogRepo
	Cart     cartService
	Checkout checkoutService
	Customer customerService
	Admin    adminService
	Theme    themeService
	Orders   orderReader
	State    stateReader
}

type catalogRepo interface {
	List(ctx context.Context, category string) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type cartService interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	Add(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error)
	SetQuantity(ctx context.Context, ownerID, productID string, quantity int) (*domain.Cart, error)
	Remove(ctx context.Context, ownerID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, ownerID string) error
}

type checkoutService interface {
	Start(ctx context.Context, ownerID string) (*domain.OrderDraft, error)
	GetDraft(ctx context.Context, id string) (*domain.OrderDraft, error)
	SelectMethod(ctx context.Context, draftID, method string) (*domain.OrderDraft, error)
	SubmitPayPal(ctx context.Context, draftID string, userID *string) (*domain.PersistedOrder, error)
	SubmitCard(ctx context.Context, draftID string, userID *string, cardNumber, expiry, cvv string) (*domain.PersistedOrder, error)
	SubmitCrypto(ctx context.Context, draftID string) (string, *domain.OrderDraft, error)
	Cancel(ctx context.Context, draftID string) error
}

type customerService interface {
	Register(ctx context.Context, email, password, displayName string) (*customersvc.Account, error)
	Login(ctx context.Context, email, password string) (*customersvc.Account, string, error)
	Logout(ctx context.Context, token string) error
	LookupByToken(ctx context.Context, token string) (*customersvc.Account, error)
}

type adminService interface {
	Login(ctx context.Context, code string) (string, error)
	Validate(ctx context.Context, token string) error
	Logout(ctx context.Context, token string) error
	Dashboard(ctx context.Context) (*adminsvc.Dashboard, error)
	Orders(ctx context.Context) ([]domain.PersistedOrder, error)
	Logs(ctx context.Context, limit int) ([]adminrepo.LogEntry, error)
	RevokeLicense(ctx context.Context, key string) error
	MarkDelivered(ctx context.Context, orderID string) error
	SettleCrypto(ctx context.Context, draftID string) (*domain.PersistedOrder, error)
}

type themeService interface {
	Themes() []domain.Theme
	Active(ctx context.Context) (*domain.Theme, error)
	Apply(ctx context.Context, name string) (*domain.Theme, error)
	Settings(ctx context.Context) (domain.Settings, error)
	SaveSettings(ctx context.Context, settings domain.Settings) error
}

type orderReader interface {
	FindByID(ctx context.Context, id string) (*domain.PersistedOrder, error)
}

type stateReader interface {
	Get(ctx context.Context, key string, out interface{}) error
}

func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps, allowedOrigins []string) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if logger != nil {
		router.Use(func(c *gin.Context) {
			start := time.Now()
			c.Next()
			logger.Printf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
		})
	}

	corsCfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = allowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", headerCartSession, headerAdminToken)
	router.Use(cors.New(corsCfg))

	// JSON numbers carry exact decimal values, not floats.
	decimal.MarshalJSONWithoutQuotes = true

	h := &handlers{deps: deps}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.GET("/products", h.listProducts)
	router.GET("/products/:productID", h.getProduct)

	router.POST("/cart/session", h.newCartSession)
	cart := router.Group("/cart", h.requireOwner)
	{
		cart.GET("", h.getCart)
		cart.POST("/items", h.addCartItem)
		cart.PATCH("/items/:productID", h.setCartItemQuantity)
		cart.DELETE("/items/:productID", h.removeCartItem)
		cart.DELETE("", h.clearCart)
	}

	checkout := router.Group("/checkout", h.requireOwner)
	{
		checkout.POST("", h.startCheckout)
		checkout.GET("/:draftID", h.getDraft)
		checkout.POST("/:draftID/method", h.selectMethod)
		checkout.POST("/:draftID/paypal", h.submitPayPal)
		checkout.POST("/:draftID/card", h.submitCard)
		checkout.POST("/:draftID/crypto", h.submitCrypto)
		checkout.POST("/:draftID/cancel", h.cancelCheckout)
	}

	router.GET("/orders/:orderID", h.getOrder)
	router.GET("/orders/:orderID/licenses", h.getOrderLicenses)

	auth := router.Group("/auth")
	{
		auth.POST("/register", h.register)
		auth.POST("/login", h.login)
		auth.POST("/logout", h.logout)
		auth.GET("/me", h.me)
	}

	router.GET("/themes", h.listThemes)
	router.GET("/themes/active", h.activeTheme)
	router.PUT("/themes/active", h.applyTheme)
	router.GET("/settings", h.getSettings)
	router.PUT("/settings", h.putSettings)

	router.POST("/admin/login", h.adminLogin)
	admin := router.Group("/admin", h.requireAdmin)
	{
		admin.POST("/logout", h.adminLogout)
		admin.GET("/dashboard", h.adminDashboard)
		admin.GET("/orders", h.adminOrders)
		admin.POST("/orders/:orderID/deliver", h.adminMarkDelivered)
		admin.POST("/orders/:orderID/complete", h.adminSettleCrypto)
		admin.POST("/licenses/:licenseKey/revoke", h.adminRevokeLicense)
		admin.GET("/logs", h.adminLogs)
	}

	return router, nil
}

type handlers struct {
	deps Deps
}
