package models

import "time"

// AssetStatus — состояние модерации ассета.
type AssetStatus string

const (
	AssetPending  AssetStatus = "PENDING"
	AssetApproved AssetStatus = "APPROVED"
	AssetRejected AssetStatus = "REJECTED"
)

// Valid сообщает, является ли значение известным статусом ассета.
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetPending, AssetApproved, AssetRejected:
		return true
	}
	return false
}

// Asset — цифровой ассет каталога. ObjectKey никогда не отдаётся клиенту.
type Asset struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Type        string      `json:"type,omitempty"`
	Tags        string      `json:"tags,omitempty"`
	AuthorID    string      `json:"author_id"`
	ObjectKey   string      `json:"-"`
	ThumbURL    string      `json:"thumb_url,omitempty"`
	Status      AssetStatus `json:"status"`
	Downloads   int64       `json:"downloads"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AssetFilter — параметры выборки одобренных ассетов.
type AssetFilter struct {
	Query  string // Поиск по title и tags без учёта регистра
	Type   string
	Limit  int
	Offset int
}

// AssetPage — страница результатов каталога.
type AssetPage struct {
	Items []*Asset `json:"items"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Pages int      `json:"pages"`
}
