package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/store"
	"github.com/yeremiapane/orderin/utils"
)

type AdminController struct {
	Selector *database.Selector
	Menus    *store.MenuStore
	Orders   *store.OrderStore
	Tables   *store.TableStore
}

func NewAdminController(sel *database.Selector, menus *store.MenuStore, orders *store.OrderStore, tables *store.TableStore) *AdminController {
	return &AdminController{Selector: sel, Menus: menus, Orders: orders, Tables: tables}
}

type dashboardStats struct {
	TotalOrders   int                        `json:"total_orders"`
	TodayOrders   int                        `json:"today_orders"`
	TotalRevenue  float64                    `json:"total_revenue"`
	TodayRevenue  float64                    `json:"today_revenue"`
	PendingOrders int                        `json:"pending_orders"`
	ActiveTables  int                        `json:"active_tables"`
	OrderStats    map[models.OrderStatus]int `json:"order_stats"`
	TableStats    map[models.TableStatus]int `json:"table_stats"`
}

// GetDashboardStats mengambil statistik untuk dashboard. Pendapatan hanya
// dihitung dari pesanan yang sudah Served.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	year, month, day := time.Now().Date()
	isToday := func(t time.Time) bool {
		y, m, d := t.Local().Date()
		return y == year && m == month && d == day
	}

	stats := dashboardStats{
		OrderStats: make(map[models.OrderStatus]int),
		TableStats: make(map[models.TableStatus]int),
	}

	for _, status := range []models.OrderStatus{models.OrderPending, models.OrderPreparing, models.OrderServed, models.OrderCancelled} {
		orders := ac.Orders.ByStatus(status)
		stats.OrderStats[status] = len(orders)
		stats.TotalOrders += len(orders)
		for _, o := range orders {
			if isToday(o.CreatedAt) {
				stats.TodayOrders++
			}
			if status != models.OrderServed {
				continue
			}
			stats.TotalRevenue += o.Total
			if isToday(o.CreatedAt) {
				stats.TodayRevenue += o.Total
			}
		}
	}
	stats.PendingOrders = stats.OrderStats[models.OrderPending]

	for _, status := range []models.TableStatus{models.TableAvailable, models.TableOccupied, models.TableReserved, models.TableCleaning, models.TableMaintenance} {
		stats.TableStats[status] = 0
	}
	for _, t := range ac.Tables.Items() {
		stats.TableStats[t.Status]++
	}
	stats.ActiveTables = stats.TableStats[models.TableOccupied]

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved", stats)
}

// Reload membaca ulang ketiga koleksi dari backend.
func (ac *AdminController) Reload(c *gin.Context) {
	ctx := c.Request.Context()
	menus := ac.Menus.Load(ctx)
	orders := ac.Orders.Load(ctx)
	tables := ac.Tables.Load(ctx)

	utils.RespondJSON(c, http.StatusOK, "Stores reloaded", gin.H{
		"menuItems": len(menus),
		"orders":    len(orders),
		"tables":    len(tables),
	})
}

func (ac *AdminController) Status(c *gin.Context) {
	data := gin.H{
		"mode": ac.Selector.Mode().String(),
		"stores": gin.H{
			ac.Menus.Kind():  ac.Menus.Status(),
			ac.Orders.Kind(): ac.Orders.Status(),
			ac.Tables.Kind(): ac.Tables.Status(),
		},
	}
	if err := ac.Selector.ProbeError(); err != nil {
		data["probeError"] = err.Error()
	}
	utils.RespondJSON(c, http.StatusOK, "Backend status", data)
}
