// ABOUTME: File upload store: the selected photo and the scan that reads it
// ABOUTME: Scanned cards are published into the card store, all selected, each resolved to its first version

package stores

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/markalston/tcg-binder/internal/client"
	"github.com/markalston/tcg-binder/internal/models"
	"github.com/markalston/tcg-binder/internal/store"
)

// Upload is a photo waiting to be scanned
type Upload struct {
	Name    string
	Content []byte
}

// Uploads tracks the currently selected photo
type Uploads struct {
	Selected *store.Writable[*Upload]

	api    *client.Client
	cards  *Cards
	logger *slog.Logger
}

// NewUploads creates an upload store that publishes scans into cards
func NewUploads(api *client.Client, cards *Cards, logger *slog.Logger) *Uploads {
	if logger == nil {
		logger = slog.Default()
	}
	return &Uploads{
		Selected: store.NewWritable[*Upload](nil),
		api:      api,
		cards:    cards,
		logger:   logger,
	}
}

// SelectFile reads path from disk and makes it the selected upload
func (u *Uploads) SelectFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	u.Selected.Set(&Upload{Name: filepath.Base(path), Content: content})
	return nil
}

type scanResponse struct {
	Cards []models.Card `json:"cards"`
}

// ScanFile uploads the selected photo for recognition. With nothing selected
// it logs and returns without calling the backend.
func (u *Uploads) ScanFile(ctx context.Context) error {
	upload := u.Selected.Get()
	if upload == nil {
		u.logger.Error("No file uploaded")
		return nil
	}

	var resp scanResponse
	if err := u.api.PostMultipart(ctx, "/api/cards/read", "image", upload.Name, upload.Content, &resp); err != nil {
		return err
	}

	cards := make([]models.Card, len(resp.Cards))
	for i, c := range resp.Cards {
		c.Selected = true
		c.SelectDefaultVersion()
		cards[i] = c
	}
	u.cards.Read.Set(cards)
	return nil
}
