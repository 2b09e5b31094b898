package items

import (
	"curio-server/internal/common/patch"
	"curio-server/internal/domain/gallery"
)

// MetadataPatch is the JSON body of PATCH /items/:id. Every field tracks
// presence, so omitted fields never overwrite and explicit nulls clear.
type MetadataPatch struct {
	Title          patch.Field[string]  `json:"title"`
	Veneration     patch.Field[string]  `json:"veneration"`
	Description    patch.Field[string]  `json:"description"`
	AltText        patch.Field[string]  `json:"alt_text"`
	CommissionDate patch.Field[string]  `json:"commission_date"`
	OwnedSince     patch.Field[string]  `json:"owned_since"`
	MonitoryValue  patch.Field[float64] `json:"monitory_value"`
	CollectionID   patch.Field[uint]    `json:"collection_id"`
}

type ItemsPublic struct {
	Data  []gallery.Item `json:"data"`
	Count int64          `json:"count"`
}
