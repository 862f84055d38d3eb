// ABOUTME: Series store: list sets for a licence and the cards in a set

package stores

import (
	"context"
	"net/url"

	"github.com/markalston/tcg-binder/internal/client"
	"github.com/markalston/tcg-binder/internal/models"
)

// SeriesStore browses published sets
type SeriesStore struct {
	api *client.Client
}

func NewSeries(api *client.Client) *SeriesStore {
	return &SeriesStore{api: api}
}

// FetchSeries lists the sets published under licence
func (s *SeriesStore) FetchSeries(ctx context.Context, licence string) ([]models.Series, error) {
	var resp struct {
		Series []models.Series `json:"series"`
	}
	if err := s.api.Get(ctx, "/api/sets?licence="+url.QueryEscape(licence), &resp); err != nil {
		return nil, err
	}
	return resp.Series, nil
}

// FetchCards lists the cards of one set
func (s *SeriesStore) FetchCards(ctx context.Context, serieID string) ([]models.Card, error) {
	var resp struct {
		Cards []models.Card `json:"cards"`
	}
	if err := s.api.Get(ctx, "/api/sets/"+url.PathEscape(serieID)+"/cards", &resp); err != nil {
		return nil, err
	}
	return resp.Cards, nil
}
