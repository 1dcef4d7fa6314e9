// Package qr builds the ordering QR code attached to a table.
package qr

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/yeremiapane/orderin/domain"
)

// MaxRasterSize bounds the pixel size accepted by Rasterize.
const MaxRasterSize = 4096

// Code is a generated QR artifact: the encoded URL and its SVG rendering.
type Code struct {
	URL string `json:"url"`
	SVG string `json:"svg"`

	modules [][]bool
}

// Surface turns a module matrix into raster bytes. Headless processes run
// without one.
type Surface interface {
	Raster(modules [][]bool, size int) ([]byte, error)
}

type Generator struct {
	baseURL string
	level   qrcode.RecoveryLevel
	surface Surface
}

type Option func(*Generator)

func WithSurface(s Surface) Option {
	return func(g *Generator) { g.surface = s }
}

func WithRecoveryLevel(level qrcode.RecoveryLevel) Option {
	return func(g *Generator) { g.level = level }
}

func NewGenerator(baseURL string, opts ...Option) *Generator {
	g := &Generator{baseURL: baseURL, level: qrcode.Medium}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) BaseURL() string {
	return g.baseURL
}

// HasSurface reports whether raster conversion is available.
func (g *Generator) HasSurface() bool {
	return g.surface != nil
}

func (g *Generator) Generate(tableID string) (Code, error) {
	return generate(tableID, g.baseURL, g.level)
}

// Generate encodes the ordering URL for tableID under baseURL.
func Generate(tableID, baseURL string) (Code, error) {
	return generate(tableID, baseURL, qrcode.Medium)
}

func generate(tableID, baseURL string, level qrcode.RecoveryLevel) (Code, error) {
	if tableID == "" {
		return Code{}, domain.Rejected("table id is required")
	}
	link := OrderURL(baseURL, tableID)
	modules, err := encode(link, level)
	if err != nil {
		return Code{}, err
	}
	return Code{URL: link, SVG: renderSVG(modules), modules: modules}, nil
}

// Rasterize converts the artifact to PNG bytes of size x size pixels.
func (g *Generator) Rasterize(code Code, size int) ([]byte, error) {
	if g.surface == nil {
		return nil, domain.ErrRenderSurfaceUnavailable
	}
	if size <= 0 || size > MaxRasterSize {
		return nil, domain.Rejected("raster size %d out of range 1..%d", size, MaxRasterSize)
	}
	modules := code.modules
	if modules == nil {
		if code.URL == "" {
			return nil, domain.Rejected("qr artifact has no url")
		}
		var err error
		if modules, err = encode(code.URL, g.level); err != nil {
			return nil, err
		}
	}
	return g.surface.Raster(modules, size)
}

// FromURL rebuilds an artifact from a previously stored url and svg.
func FromURL(link, svg string) Code {
	return Code{URL: link, SVG: svg}
}

// OrderURL is "{base}/order?tableId={id}" with the id percent-encoded.
func OrderURL(baseURL, tableID string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(tableID), "+", "%20")
	return strings.TrimRight(baseURL, "/") + "/order?tableId=" + escaped
}

func encode(content string, level qrcode.RecoveryLevel) ([][]bool, error) {
	q, err := qrcode.New(content, level)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return q.Bitmap(), nil
}

func renderSVG(modules [][]bool) string {
	n := len(modules)
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, n, n)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, n, n)
	b.WriteString(`<path fill="#000000" d="`)
	for y, row := range modules {
		for x, on := range row {
			if on {
				fmt.Fprintf(&b, "M%d %dh1v1h-1z", x, y)
			}
		}
	}
	b.WriteString(`"/></svg>`)
	return b.String()
}
