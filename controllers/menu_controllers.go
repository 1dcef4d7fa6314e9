package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/store"
	"github.com/yeremiapane/orderin/utils"
)

type MenuController struct {
	Menus *store.MenuStore
}

func NewMenuController(menus *store.MenuStore) *MenuController {
	return &MenuController{Menus: menus}
}

type menuRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	IsAvailable *bool   `json:"isAvailable"`
	Description string  `json:"description"`
}

// GetPublicMenu hanya mengembalikan item yang tersedia, untuk halaman pemesanan QR.
func (mc *MenuController) GetPublicMenu(c *gin.Context) {
	items := mc.Menus.Available()
	if category := c.Query("category"); category != "" {
		filtered := make([]*models.MenuItem, 0, len(items))
		for _, item := range items {
			if item.Category == category {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	utils.RespondJSON(c, http.StatusOK, "Menu", gin.H{
		"items":      nonNil(items),
		"categories": nonNil(mc.Menus.Categories()),
	})
}

func (mc *MenuController) ListMenus(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "List of menu items", nonNil(mc.Menus.Items()))
}

func (mc *MenuController) GetMenuByID(c *gin.Context) {
	item, ok := mc.Menus.Get(c.Param("id"))
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu detail", item)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	item := &models.MenuItem{
		Name:        req.Name,
		Price:       req.Price,
		Category:    req.Category,
		IsAvailable: true,
		Description: req.Description,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	created, err := mc.Menus.Add(c.Request.Context(), item)
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Menu created", created)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	var patch models.MenuItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updated, err := mc.Menus.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated successfully", updated)
}

func (mc *MenuController) ToggleAvailability(c *gin.Context) {
	updated, err := mc.Menus.ToggleAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu availability toggled", updated)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id := c.Param("id")
	if err := mc.Menus.Delete(c.Request.Context(), id); err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"id": id})
}

// nonNil keeps empty lists as [] in JSON instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
