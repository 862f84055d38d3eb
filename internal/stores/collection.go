// ABOUTME: Collection store: save and remove cards in the user's collection
// ABOUTME: Publishes a change event after each successful call

package stores

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/markalston/tcg-binder/internal/client"
	"github.com/markalston/tcg-binder/internal/events"
	"github.com/markalston/tcg-binder/internal/models"
)

// Collection mutates the signed-in user's collection
type Collection struct {
	api       *client.Client
	publisher events.Publisher
	uid       func() string
	logger    *slog.Logger
}

// NewCollection creates a collection store. uid names the user on published
// events and may be nil.
func NewCollection(api *client.Client, publisher events.Publisher, uid func() string, logger *slog.Logger) *Collection {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if uid == nil {
		uid = func() string { return "" }
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collection{api: api, publisher: publisher, uid: uid, logger: logger}
}

type saveRequest struct {
	Cards []models.CollectionEntry `json:"cards"`
}

// SaveCards upserts cards. Only the collection fields of each card are sent.
// Returns the parsed response body.
func (c *Collection) SaveCards(ctx context.Context, cards []models.Card) (map[string]interface{}, error) {
	entries := models.Entries(cards)

	var out map[string]interface{}
	if err := c.api.Patch(ctx, "/api/collection", saveRequest{Cards: entries}, &out); err != nil {
		return nil, err
	}

	c.publish(ctx, events.NewCollectionSaved(c.uid(), entries))
	return out, nil
}

// RemoveCard deletes one entry by ref and returns the parsed response body
func (c *Collection) RemoveCard(ctx context.Context, ref string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := c.api.Delete(ctx, "/api/collection?card_ref="+url.QueryEscape(ref), &out); err != nil {
		return nil, err
	}

	c.publish(ctx, events.NewCollectionRemoved(c.uid(), ref))
	return out, nil
}

func (c *Collection) publish(ctx context.Context, e events.CollectionChange) {
	if err := c.publisher.PublishCollectionChange(ctx, e); err != nil {
		c.logger.Warn("Failed to publish collection change", "event", e.EventType, "error", err)
	}
}
