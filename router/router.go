package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/orderin/controllers"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/kds"
	"github.com/yeremiapane/orderin/middlewares"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/services"
	"github.com/yeremiapane/orderin/store"
)

// Deps is everything the HTTP layer needs from main.
type Deps struct {
	Selector *database.Selector
	Menus    *store.MenuStore
	Orders   *store.OrderStore
	Tables   *store.TableStore
	Auth     *services.AuthService
	Hub      *kds.Hub

	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	if d.RateLimitRPS > 0 {
		r.Use(middlewares.NewRateLimiter(d.RateLimitRPS, d.RateLimitBurst).RateLimit())
	}

	// Inisialisasi controller
	userCtrl := controllers.NewUserController(d.Auth)
	menuCtrl := controllers.NewMenuController(d.Menus)
	orderCtrl := controllers.NewOrderController(d.Orders, d.Menus, d.Tables)
	tableCtrl := controllers.NewTableController(d.Tables)
	kdsCtrl := controllers.NewKDSController(d.Hub, d.CORSOrigin)
	adminCtrl := controllers.NewAdminController(d.Selector, d.Menus, d.Orders, d.Tables)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Rate limiter ketat untuk login
	r.POST("/login", middlewares.NewStrictRateLimiter().RateLimit(), userCtrl.Login)

	// -- CUSTOMER (Tanpa Auth) --
	r.GET("/menus", menuCtrl.GetPublicMenu)
	r.GET("/tables/:id/qr.svg", tableCtrl.GetQRSvg)
	r.POST("/orders", orderCtrl.PlaceOrder)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/admin")
	auth.Use(middlewares.AuthMiddleware())

	adminOnly := middlewares.RequireRoles(models.RoleAdmin)
	floor := middlewares.RequireRoles(models.RoleAdmin, models.RoleStaff)
	anyRole := middlewares.RequireRoles(models.RoleAdmin, models.RoleStaff, models.RoleKitchen)

	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/me", userCtrl.Me)

	// MENUS
	auth.GET("/menus", anyRole, menuCtrl.ListMenus)
	auth.GET("/menus/:id", anyRole, menuCtrl.GetMenuByID)
	auth.POST("/menus", adminOnly, menuCtrl.CreateMenu)
	auth.PATCH("/menus/:id", adminOnly, menuCtrl.UpdateMenu)
	auth.POST("/menus/:id/toggle", adminOnly, menuCtrl.ToggleAvailability)
	auth.DELETE("/menus/:id", adminOnly, menuCtrl.DeleteMenu)

	// ORDERS
	auth.GET("/orders", anyRole, orderCtrl.GetOrders)
	auth.GET("/orders/:id", anyRole, orderCtrl.GetOrderByID)
	auth.POST("/orders", floor, orderCtrl.CreateOrder)
	auth.PATCH("/orders/:id", floor, orderCtrl.UpdateOrder)
	auth.PATCH("/orders/:id/status", anyRole, orderCtrl.UpdateOrderStatus)
	auth.POST("/orders/:id/items", floor, orderCtrl.AddItem)
	auth.DELETE("/orders/:id/items/:itemId", floor, orderCtrl.RemoveItem)
	auth.DELETE("/orders/:id", floor, orderCtrl.DeleteOrder)

	// TABLES
	auth.GET("/tables", anyRole, tableCtrl.GetTables)
	auth.GET("/tables/:id", anyRole, tableCtrl.GetTableByID)
	auth.POST("/tables", adminOnly, tableCtrl.CreateTable)
	auth.PATCH("/tables/:id", adminOnly, tableCtrl.UpdateTable)
	auth.DELETE("/tables/:id", adminOnly, tableCtrl.DeleteTable)
	auth.POST("/tables/:id/qr", adminOnly, tableCtrl.RegenerateQR)
	auth.GET("/tables/:id/qr.png", anyRole, tableCtrl.GetQRPNG)
	auth.POST("/tables/:id/qr/publish", adminOnly, tableCtrl.PublishQR)

	// Backend
	auth.GET("/dashboard", adminOnly, adminCtrl.GetDashboardStats)
	auth.POST("/reload", adminOnly, adminCtrl.Reload)
	auth.GET("/status", anyRole, adminCtrl.Status)

	// WebSocket KDS, token lewat ?token=
	auth.GET("/kds/ws", anyRole, kdsCtrl.KDSHandler)

	return r
}
