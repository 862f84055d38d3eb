// ABOUTME: Canonical card and series shapes exchanged with the collection backend
// ABOUTME: Decoding reconciles older field names into one card type

package models

import "encoding/json"

// Variant is a purchasable printing of a card
type Variant struct {
	Number    string `json:"number"`
	ProductID string `json:"product_id"`
}

// Card identifies a collectible by set and number.
// Fields past CardNumber are optional depending on the endpoint that produced the card.
type Card struct {
	ID         string    `json:"_id,omitempty"`
	Ref        string    `json:"ref,omitempty"`
	SetID      string    `json:"set_id"`
	CardNumber string    `json:"card_number"`
	CardName   string    `json:"card_name,omitempty"`
	Image      string    `json:"image,omitempty"`
	Licence    string    `json:"licence,omitempty"`
	Variants   []Variant `json:"variants,omitempty"`
	Selected   bool      `json:"selected,omitempty"`
	Count      int       `json:"count,omitempty"`
	IntNumber  int       `json:"int_number,omitempty"`
	Versions   []Card    `json:"card_versions,omitempty"`

	// SelectedVersion is the catalogue entry a scanned card resolves to.
	// Scan results carry _id and ref only on their versions.
	SelectedVersion *Card `json:"selectedCard,omitempty"`
}

// UnmarshalJSON accepts set_tag for set_id and card_img for image.
// Canonical names win when both are present.
func (c *Card) UnmarshalJSON(data []byte) error {
	type plain Card
	aux := struct {
		*plain
		SetTag  string `json:"set_tag"`
		CardImg string `json:"card_img"`
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if c.SetID == "" {
		c.SetID = aux.SetTag
	}
	if c.Image == "" {
		c.Image = aux.CardImg
	}
	return nil
}

// CollectionEntry is the subset of a card persisted in a user's collection.
// Only these fields are sent when saving.
type CollectionEntry struct {
	ID         string `json:"_id,omitempty"`
	Ref        string `json:"ref,omitempty"`
	SetID      string `json:"set_id"`
	CardNumber string `json:"card_number"`
	Count      int    `json:"count"`
}

// Version returns the entry to save: the selected version, else the first
// version, else the card itself
func (c Card) Version() Card {
	if c.SelectedVersion != nil {
		return *c.SelectedVersion
	}
	if len(c.Versions) > 0 {
		return c.Versions[0]
	}
	return c
}

// SelectDefaultVersion selects the first version when none is selected
func (c *Card) SelectDefaultVersion() {
	if c.SelectedVersion == nil && len(c.Versions) > 0 {
		v := c.Versions[0]
		c.SelectedVersion = &v
	}
}

// CycleVersion selects the version after the current one, wrapping around.
// Cards without versions are left alone.
func (c *Card) CycleVersion() {
	if len(c.Versions) == 0 {
		return
	}
	next := 0
	if c.SelectedVersion != nil {
		for i, v := range c.Versions {
			if v.Ref == c.SelectedVersion.Ref && v.ID == c.SelectedVersion.ID {
				next = (i + 1) % len(c.Versions)
				break
			}
		}
	}
	v := c.Versions[next]
	c.SelectedVersion = &v
}

// Entry projects the card onto the fields the collection endpoint accepts.
// _id and ref come from the resolved version when it has a ref. Count is
// always the card's.
func (c Card) Entry() CollectionEntry {
	v := c.Version()
	id, ref := c.ID, c.Ref
	if v.Ref != "" {
		id, ref = v.ID, v.Ref
	}
	return CollectionEntry{
		ID:         id,
		Ref:        ref,
		SetID:      firstNonEmpty(v.SetID, c.SetID),
		CardNumber: firstNonEmpty(v.CardNumber, c.CardNumber),
		Count:      c.Count,
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Entries projects every card in order
func Entries(cards []Card) []CollectionEntry {
	out := make([]CollectionEntry, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.Entry())
	}
	return out
}

// SelectedCards returns the cards flagged for saving, preserving order
func SelectedCards(cards []Card) []Card {
	var out []Card
	for _, c := range cards {
		if c.Selected {
			out = append(out, c)
		}
	}
	return out
}

// Series is a card set published under a licence
type Series struct {
	ID      string `json:"_id"`
	Name    string `json:"name,omitempty"`
	SetID   string `json:"set_id,omitempty"`
	Licence string `json:"licence,omitempty"`
	Date    string `json:"date,omitempty"`
	Logo    string `json:"logo,omitempty"`
}
