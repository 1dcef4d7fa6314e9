package store

import (
	"context"
	"fmt"

	"github.com/yeremiapane/orderin/database"
	"github.com/yeremiapane/orderin/domain"
	"github.com/yeremiapane/orderin/models"
	"github.com/yeremiapane/orderin/qr"
	"github.com/yeremiapane/orderin/storage"
)

type TableStore struct {
	*RecordStore[*models.Table]
	qr       *qr.Generator
	uploader storage.Uploader
}

func NewTableStore(backend database.Backend, gen *qr.Generator, opts ...Option) *TableStore {
	cfg := buildConfig(config{newID: prefixedID("TABLE"), retryDelay: defaultRetryDelay}, opts)
	return &TableStore{
		RecordStore: newRecordStore(database.CollectionTables, backend, func() *models.Table {
			return &models.Table{}
		}, nil, cfg),
		qr: gen,
	}
}

// SetUploader enables PublishQR.
func (s *TableStore) SetUploader(u storage.Uploader) {
	s.uploader = u
}

func (s *TableStore) SetStatus(ctx context.Context, id string, status models.TableStatus) (*models.Table, error) {
	return s.Update(ctx, id, models.TablePatch{Status: &status})
}

// RegenerateQR builds a fresh ordering QR for the table and stores it on the entity.
func (s *TableStore) RegenerateQR(ctx context.Context, id string) (*models.Table, error) {
	code, err := s.qr.Generate(id)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, id, models.TablePatch{QRUrl: &code.URL, QRSvg: &code.SVG})
}

// QRCode returns the cached artifact, generating a transient one when the
// table has none yet.
func (s *TableStore) QRCode(id string) (qr.Code, error) {
	t, ok := s.Get(id)
	if !ok {
		return qr.Code{}, fmt.Errorf("%w: table %s", domain.ErrNotFound, id)
	}
	if t.QRUrl == "" {
		return s.qr.Generate(id)
	}
	return qr.FromURL(t.QRUrl, t.QRSvg), nil
}

// QRPNG rasterizes the table's QR. Without a render surface it returns
// domain.ErrRenderSurfaceUnavailable.
func (s *TableStore) QRPNG(id string, size int) ([]byte, error) {
	code, err := s.QRCode(id)
	if err != nil {
		return nil, err
	}
	return s.qr.Rasterize(code, size)
}

// PublishQR uploads the rasterized QR and records its public link on the table.
func (s *TableStore) PublishQR(ctx context.Context, id string, size int) (*models.Table, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: no artifact storage configured", domain.ErrBackendUnavailable)
	}
	data, err := s.QRPNG(id, size)
	if err != nil {
		return nil, err
	}
	link, err := s.uploader.Upload(ctx, fmt.Sprintf("tables/%s/qr.png", id), data, "image/png")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
	}
	return s.Update(ctx, id, models.TablePatch{QRImageURL: &link})
}

// ByNumber finds a table by its customer-facing number.
func (s *TableStore) ByNumber(number int) (*models.Table, bool) {
	for _, t := range s.Items() {
		if t.Number == number {
			return t, true
		}
	}
	return nil, false
}
