package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/orderin/domain"
	"github.com/yeremiapane/orderin/middlewares"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/store"
	"github.com/yeremiapane/orderin/utils"
)

type OrderController struct {
	Orders *store.OrderStore
	Menus  *store.MenuStore
	Tables *store.TableStore
}

func NewOrderController(orders *store.OrderStore, menus *store.MenuStore, tables *store.TableStore) *OrderController {
	return &OrderController{Orders: orders, Menus: menus, Tables: tables}
}

type customerItem struct {
	ID       string `json:"id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required"`
}

type customerOrderRequest struct {
	TableID string         `json:"tableId" binding:"required"`
	Items   []customerItem `json:"items" binding:"required"`
}

type orderRequest struct {
	TableID string             `json:"tableId"`
	Items   []models.OrderItem `json:"items"`
}

type statusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// GetOrders mendukung filter ?status=Pending
func (oc *OrderController) GetOrders(c *gin.Context) {
	if status := c.Query("status"); status != "" {
		utils.RespondJSON(c, http.StatusOK, "List of orders", nonNil(oc.Orders.ByStatus(models.OrderStatus(status))))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", nonNil(oc.Orders.Items()))
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	order, ok := oc.Orders.Get(c.Param("id"))
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	created, err := oc.Orders.Add(c.Request.Context(), &models.Order{
		TableID: req.TableID,
		Items:   req.Items,
	})
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": created.ID,
		"table_id": created.TableID,
		"total":    created.Total,
	}).Info("Order created")
	utils.RespondJSON(c, http.StatusCreated, "Order created", created)
}

// PlaceOrder adalah endpoint publik dari halaman scan QR. Nama dan harga
// item diambil dari menu, bukan dari client.
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req customerOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, ok := oc.Tables.Get(req.TableID)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}
	if len(req.Items) == 0 {
		utils.RespondStoreError(c, domain.Rejected("order has no items"))
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		menu, ok := oc.Menus.Get(it.ID)
		if !ok || !menu.IsAvailable {
			utils.RespondStoreError(c, domain.Rejected("menu item %s is not available", it.ID))
			return
		}
		items = append(items, models.OrderItem{
			ID:       menu.ID,
			Name:     menu.Name,
			Price:    menu.Price,
			Quantity: it.Quantity,
		})
	}

	created, err := oc.Orders.Add(c.Request.Context(), &models.Order{
		TableID: table.ID,
		Items:   items,
	})
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": created.ID,
		"table_id": table.ID,
	}).Info("Customer order placed")
	utils.RespondJSON(c, http.StatusCreated, "Order placed", created)
}

func (oc *OrderController) UpdateOrder(c *gin.Context) {
	var patch models.OrderPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updated, err := oc.Orders.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order updated", updated)
}

// UpdateOrderStatus juga dipakai dapur; kitchen hanya boleh Preparing dan Served.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if models.Role(c.GetString(middlewares.ContextRole)) == models.RoleKitchen &&
		req.Status != models.OrderPreparing && req.Status != models.OrderServed {
		utils.RespondError(c, http.StatusForbidden, errors.New("kitchen may only set Preparing or Served"))
		return
	}

	updated, err := oc.Orders.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", updated)
}

func (oc *OrderController) AddItem(c *gin.Context) {
	var item models.OrderItem
	if err := c.ShouldBindJSON(&item); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updated, err := oc.Orders.AddItem(c.Request.Context(), c.Param("id"), item)
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item added", updated)
}

func (oc *OrderController) RemoveItem(c *gin.Context) {
	updated, err := oc.Orders.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item removed", updated)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := oc.Orders.Delete(c.Request.Context(), id); err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order deleted", gin.H{"id": id})
}
