package collections

import (
	"curio-server/internal/common/patch"
	"curio-server/internal/domain/gallery"
)

type CreateRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	IsPublic    bool    `json:"is_public"`
}

type UpdateRequest struct {
	Name        patch.Field[string] `json:"name"`
	Description patch.Field[string] `json:"description"`
	IsPublic    patch.Field[bool]   `json:"is_public"`
}

type CollectionsPublic struct {
	Data  []gallery.Collection `json:"data"`
	Count int64                `json:"count"`
}
