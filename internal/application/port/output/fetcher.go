package output

import (
	"context"

	"browser-bridge/internal/domain/entity"
)

type PageFetcherPort interface {
	Fetch(ctx context.Context, url string) (*entity.FetchedPage, error)
}

type TextExtractorPort interface {
	// ExtractText strips markup and returns at most maxChars characters.
	ExtractText(rawHTML string, maxChars int) string
}
