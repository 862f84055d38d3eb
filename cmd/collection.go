// ABOUTME: collection command: save and remove entries in your collection
// ABOUTME: Cards are given as REF[:COUNT] or SET:NUMBER[:COUNT]

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/markalston/tcg-binder/internal/models"
)

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage your collection",
}

var collectionSaveCmd = &cobra.Command{
	Use:   "save REF[:COUNT]... | SET:NUMBER[:COUNT]...",
	Short: "Add or update cards in your collection",
	Long: `Add or update cards in your collection.

Each argument names a card either by its catalogue ref, as shown by
"sets cards" and "scan" (e.g. "series/SV6/cards/abc:2"), or by set and
number (e.g. "SV6:052:2"). Set and number are looked up to find the ref.
The count is optional and defaults to 1.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int {
			cards, err := parseCardArgs(args)
			if err != nil {
				fmt.Fprintf(os.Stdout, "Error: %v\n", err)
				return 2
			}
			return runCollectionSave(ctx, os.Stdout, cards)
		})
	},
}

var collectionRemoveCmd = &cobra.Command{
	Use:   "remove <ref>",
	Short: "Remove one card from your collection by ref",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int { return runCollectionRemove(ctx, os.Stdout, args[0]) })
	},
}

var errNoRef = errors.New("backend returned no ref for card")

func init() {
	collectionCmd.AddCommand(collectionSaveCmd, collectionRemoveCmd)
	rootCmd.AddCommand(collectionCmd)
}

// parseCardArgs parses REF[:COUNT] and SET:NUMBER[:COUNT] arguments.
// Arguments containing a slash are refs.
func parseCardArgs(args []string) ([]models.Card, error) {
	cards := make([]models.Card, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, ":")
		isRef := strings.Contains(parts[0], "/")

		card := models.Card{Count: 1}
		var countPart []string
		switch {
		case isRef && len(parts) <= 2:
			card.Ref = parts[0]
			countPart = parts[1:]
		case !isRef && len(parts) >= 2 && len(parts) <= 3 && parts[0] != "" && parts[1] != "":
			card.SetID, card.CardNumber = parts[0], parts[1]
			countPart = parts[2:]
		default:
			return nil, fmt.Errorf("invalid card %q, expected REF[:COUNT] or SET:NUMBER[:COUNT]", arg)
		}

		if len(countPart) == 1 {
			n, err := strconv.Atoi(countPart[0])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid count in %q", arg)
			}
			card.Count = n
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// resolveRefs looks up the catalogue ref of every card given by set and number
func resolveRefs(ctx context.Context, a *app, cards []models.Card) ([]models.Card, error) {
	out := make([]models.Card, len(cards))
	for i, c := range cards {
		if c.Ref != "" {
			out[i] = c
			continue
		}
		found, err := a.cards.FetchCard(ctx, c.CardNumber, c.SetID)
		if err != nil {
			return nil, err
		}
		if found.Entry().Ref == "" {
			return nil, fmt.Errorf("%w: %s:%s", errNoRef, c.SetID, c.CardNumber)
		}
		found.Count = c.Count
		out[i] = *found
	}
	return out, nil
}

func runCollectionSave(ctx context.Context, w io.Writer, cards []models.Card) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	resolved, err := resolveRefs(ctx, a, cards)
	if errors.Is(err, errNoRef) {
		fmt.Fprintf(w, "Error: %v; pass the card ref instead\n", err)
		return 2
	}
	if err != nil {
		return a.fail(ctx, w, err)
	}
	return saveCards(ctx, w, a, resolved)
}

// saveCards saves cards and reports the backend's answer
func saveCards(ctx context.Context, w io.Writer, a *app, cards []models.Card) int {
	resp, err := a.collection.SaveCards(ctx, cards)
	if err != nil {
		return a.fail(ctx, w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, resp)
	} else {
		fmt.Fprintf(w, "Saved %d card(s) to your collection\n", len(cards))
	}
	return 0
}

func runCollectionRemove(ctx context.Context, w io.Writer, ref string) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	resp, err := a.collection.RemoveCard(ctx, ref)
	if err != nil {
		return a.fail(ctx, w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, resp)
	} else {
		fmt.Fprintf(w, "Removed %s from your collection\n", ref)
	}
	return 0
}
