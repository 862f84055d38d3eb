// ABOUTME: Card store: the cards read from the latest scan and single-card lookup
// ABOUTME: Each operation is one backend call with the result unwrapped

package stores

import (
	"context"
	"errors"
	"net/url"

	"github.com/markalston/tcg-binder/internal/client"
	"github.com/markalston/tcg-binder/internal/models"
	"github.com/markalston/tcg-binder/internal/store"
)

// Cards holds the cards recognized by the most recent scan
type Cards struct {
	Read *store.Writable[[]models.Card]

	api *client.Client
}

// NewCards creates an empty card store
func NewCards(api *client.Client) *Cards {
	return &Cards{
		Read: store.NewWritable([]models.Card{}),
		api:  api,
	}
}

type cardResponse struct {
	Card *models.Card `json:"card"`
}

// FetchCard looks up one card by number within a set
func (c *Cards) FetchCard(ctx context.Context, cardNumber, setID string) (*models.Card, error) {
	q := url.Values{}
	q.Set("card_number", cardNumber)
	q.Set("set_id", setID)

	var resp cardResponse
	if err := c.api.Get(ctx, "/api/cards?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Card == nil {
		return nil, errors.New("response has no card")
	}
	return resp.Card, nil
}
