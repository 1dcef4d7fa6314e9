package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/orderin/domain"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/store"
	"github.com/yeremiapane/orderin/utils"
)

const defaultQRSize = 256

type TableController struct {
	Tables *store.TableStore
}

func NewTableController(tables *store.TableStore) *TableController {
	return &TableController{Tables: tables}
}

type tableRequest struct {
	Number int                `json:"number"`
	Name   string             `json:"name"`
	Zone   string             `json:"zone"`
	Status models.TableStatus `json:"status"`
}

func (tc *TableController) GetTables(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "List of tables", nonNil(tc.Tables.Items()))
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	table, ok := tc.Tables.Get(c.Param("id"))
	if !ok {
		utils.RespondError(c, http.StatusNotFound, errors.New("table not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

func (tc *TableController) CreateTable(c *gin.Context) {
	var req tableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if _, taken := tc.Tables.ByNumber(req.Number); taken && req.Number > 0 {
		utils.RespondStoreError(c, domain.Rejected("table number %d already exists", req.Number))
		return
	}

	created, err := tc.Tables.Add(c.Request.Context(), &models.Table{
		Number: req.Number,
		Name:   req.Name,
		Zone:   req.Zone,
		Status: req.Status,
	})
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Table created", created)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	var patch models.TablePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	// Artefak QR hanya boleh diubah lewat endpoint QR.
	patch.QRUrl, patch.QRSvg, patch.QRImageURL = nil, nil, nil

	updated, err := tc.Tables.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table updated", updated)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	id := c.Param("id")
	if err := tc.Tables.Delete(c.Request.Context(), id); err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": id})
}

func (tc *TableController) RegenerateQR(c *gin.Context) {
	updated, err := tc.Tables.RegenerateQR(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "QR regenerated", updated)
}

// GetQRSvg is public so the printed QR can be fetched without a token.
func (tc *TableController) GetQRSvg(c *gin.Context) {
	code, err := tc.Tables.QRCode(c.Param("id"))
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(code.SVG))
}

func (tc *TableController) GetQRPNG(c *gin.Context) {
	size, err := qrSize(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	data, err := tc.Tables.QRPNG(c.Param("id"), size)
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

func (tc *TableController) PublishQR(c *gin.Context) {
	size, err := qrSize(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	updated, err := tc.Tables.PublishQR(c.Request.Context(), c.Param("id"), size)
	if err != nil {
		utils.RespondStoreError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "QR published", updated)
}

func qrSize(c *gin.Context) (int, error) {
	raw := c.Query("size")
	if raw == "" {
		return defaultQRSize, nil
	}
	size, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid size")
	}
	return size, nil
}
