package api

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/travelmate/tripplanner/client/internal/types"
)

// ListCatalogItems returns every selectable catalog item.
func ListCatalogItems(ctx context.Context, rc *resty.Client) ([]types.CatalogItem, error) {
	var items []types.CatalogItem
	if err := execute(ctx, rc.R(), http.MethodGet, "/catalog-items", "list catalog items", &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []types.CatalogItem{}
	}
	return items, nil
}
