package models

import "strings"

type TableStatus string

const (
	TableAvailable   TableStatus = "available"
	TableOccupied    TableStatus = "occupied"
	TableReserved    TableStatus = "reserved"
	TableCleaning    TableStatus = "cleaning"
	TableMaintenance TableStatus = "maintenance"
)

type Table struct {
	Meta
	Number     int         `json:"number" validate:"gt=0"`
	Name       string      `json:"name,omitempty"`
	Zone       string      `json:"zone,omitempty"`
	Status     TableStatus `json:"status" validate:"oneof=available occupied reserved cleaning maintenance"`
	QRUrl      string      `json:"qrUrl,omitempty"`
	QRSvg      string      `json:"qrSvg,omitempty"`
	QRImageURL string      `json:"qrImageUrl,omitempty"`
}

func (t *Table) Clone() *Table {
	c := *t
	return &c
}

func (t *Table) Normalize() {
	if t.Status == "" {
		t.Status = TableAvailable
	}
	t.Name = strings.TrimSpace(t.Name)
	t.Zone = strings.TrimSpace(t.Zone)
}

type TablePatch struct {
	Number     *int         `json:"number,omitempty"`
	Name       *string      `json:"name,omitempty"`
	Zone       *string      `json:"zone,omitempty"`
	Status     *TableStatus `json:"status,omitempty"`
	QRUrl      *string      `json:"qrUrl,omitempty"`
	QRSvg      *string      `json:"qrSvg,omitempty"`
	QRImageURL *string      `json:"qrImageUrl,omitempty"`
}

func (p TablePatch) Apply(t *Table) {
	if p.Number != nil {
		t.Number = *p.Number
	}
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Zone != nil {
		t.Zone = *p.Zone
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.QRUrl != nil {
		t.QRUrl = *p.QRUrl
	}
	if p.QRSvg != nil {
		t.QRSvg = *p.QRSvg
	}
	if p.QRImageURL != nil {
		t.QRImageURL = *p.QRImageURL
	}
}
