package catalog

import (
	"github.com/charmbracelet/log"

	"github.com/purestream711/PureStream-sub004/internal/models"
)

// Mapper converts between rich catalog items and flat persisted records.
// Both directions are total: a nested field that fails to encode or decode
// becomes empty while the rest of the record is kept.
type Mapper struct {
	codec  Codec
	logger *log.Logger
}

// NewMapper creates a mapper. A nil codec selects JSONCodec.
func NewMapper(codec Codec, logger *log.Logger) *Mapper {
	if codec == nil {
		codec = JSONCodec{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Mapper{codec: codec, logger: logger}
}

// ToRecord flattens item. ProfileID and CachedAt are left for the caller.
func (m *Mapper) ToRecord(item models.CatalogItem) models.CatalogRecord {
	return models.CatalogRecord{
		ID:           item.ID,
		LibraryID:    item.LibraryID,
		Title:        item.Title,
		SortTitle:    item.SortTitle,
		Year:         item.Year,
		Type:         item.Type,
		Summary:      item.Summary,
		Rating:       item.Rating,
		DurationMs:   item.DurationMs,
		MediaStreams: m.encode(item.ID, "media_streams", item.MediaStreams, len(item.MediaStreams)),
		ExternalIDs:  m.encode(item.ID, "external_ids", item.ExternalIDs, len(item.ExternalIDs)),
		Collections:  m.encode(item.ID, "collections", item.Collections, len(item.Collections)),
		AddedAt:      item.AddedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

// ToDomain rebuilds a catalog item. Nested fields always come back non-nil.
func (m *Mapper) ToDomain(rec models.CatalogRecord) models.CatalogItem {
	item := models.CatalogItem{
		ID:           rec.ID,
		LibraryID:    rec.LibraryID,
		Title:        rec.Title,
		SortTitle:    rec.SortTitle,
		Year:         rec.Year,
		Type:         rec.Type,
		Summary:      rec.Summary,
		Rating:       rec.Rating,
		DurationMs:   rec.DurationMs,
		MediaStreams: []models.MediaStream{},
		ExternalIDs:  []models.ExternalID{},
		Collections:  []string{},
		AddedAt:      rec.AddedAt,
		UpdatedAt:    rec.UpdatedAt,
	}

	m.decode(rec.ID, "media_streams", rec.MediaStreams, &item.MediaStreams)
	m.decode(rec.ID, "external_ids", rec.ExternalIDs, &item.ExternalIDs)
	m.decode(rec.ID, "collections", rec.Collections, &item.Collections)

	if item.MediaStreams == nil {
		item.MediaStreams = []models.MediaStream{}
	}
	if item.ExternalIDs == nil {
		item.ExternalIDs = []models.ExternalID{}
	}
	if item.Collections == nil {
		item.Collections = []string{}
	}
	return item
}

func (m *Mapper) encode(itemID, field string, v any, n int) []byte {
	if n == 0 {
		return nil
	}
	data, err := m.codec.Marshal(v)
	if err != nil {
		m.logger.Warn("encode nested field", "item", itemID, "field", field, "codec", m.codec.Name(), "err", err)
		return nil
	}
	return data
}

// decodeSlice leaves dst untouched on failure.
func decodeSlice[T any](codec Codec, data []byte, dst *[]T) error {
	var out []T
	if err := codec.Unmarshal(data, &out); err != nil {
		return err
	}
	*dst = out
	return nil
}

func (m *Mapper) decode(itemID, field string, data []byte, dst any) {
	if len(data) == 0 {
		return
	}

	var err error
	switch d := dst.(type) {
	case *[]models.MediaStream:
		err = decodeSlice(m.codec, data, d)
	case *[]models.ExternalID:
		err = decodeSlice(m.codec, data, d)
	case *[]string:
		err = decodeSlice(m.codec, data, d)
	}
	if err != nil {
		m.logger.Warn("decode nested field", "item", itemID, "field", field, "codec", m.codec.Name(), "err", err)
	}
}
