package news

import (
	"context"
)

// MinDescriptionLength: статья пригодна, только если описание длиннее этого порога
const MinDescriptionLength = 50

// Article представляет одну новость в общем для всех источников виде
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	SourceID    string `json:"source_id"`
	URL         string `json:"url"`
}

// Source представляет источник новостей
type Source interface {
	FetchArticles(ctx context.Context) ([]Article, error)
	GetName() string
}
