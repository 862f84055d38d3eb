// ABOUTME: watch command: scan photos as they land in an inbox folder
// ABOUTME: Reports each outcome as a toast

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/markalston/tcg-binder/internal/inbox"
	"github.com/markalston/tcg-binder/internal/models"
	"github.com/markalston/tcg-binder/internal/store"
	"github.com/markalston/tcg-binder/internal/tui/toasts"
)

var watchSave bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Scan photos dropped into a folder",
	Long: `Watch a folder and scan every new .jpg, .jpeg, .png, or .webp file once it
has finished writing. The folder defaults to inbox.dir from the config.

Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		exitWith(func(ctx context.Context) int { return runWatch(ctx, os.Stdout, dir, watchSave) })
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchSave, "save", false, "Save every recognized card to your collection")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, w io.Writer, dir string, save bool) int {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer a.close()

	if dir == "" {
		dir = a.cfg.InboxDir
	}
	if dir == "" {
		fmt.Fprintln(w, "Error: no folder given and inbox.dir is not configured")
		return 2
	}

	watcher, err := inbox.New(dir, inbox.DefaultSettle, a.logger)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	defer watcher.Close()

	unsub := printNewToasts(w, a.toasts.List)
	defer unsub()

	if !IsJSONOutput() {
		printTitle(w, "Watching "+dir)
	}

	err = watcher.Run(ctx, func(ctx context.Context, path string) {
		scanInboxFile(ctx, a, path, save)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	return 0
}

// scanInboxFile scans one photo and posts a toast with the outcome
func scanInboxFile(ctx context.Context, a *app, path string, save bool) {
	name := filepath.Base(path)
	if err := a.uploads.SelectFile(path); err != nil {
		a.toasts.Add(fmt.Sprintf("%s: %v", name, err), models.ToastError, 0)
		return
	}
	if err := a.uploads.ScanFile(ctx); err != nil {
		a.toasts.Add(fmt.Sprintf("%s: %s", name, describeError(ctx, a.api.BaseURL(), err)), models.ToastError, 0)
		return
	}

	cards := models.SelectedCards(a.cards.Read.Get())
	if len(cards) == 0 {
		a.toasts.Add(name+": no cards recognized", models.ToastWarning, 0)
		return
	}
	a.toasts.Add(fmt.Sprintf("%s: recognized %d card(s)", name, len(cards)), models.ToastInfo, 0)

	if !save {
		return
	}
	if _, err := a.collection.SaveCards(ctx, cards); err != nil {
		a.toasts.Add(fmt.Sprintf("%s: save failed: %s", name, describeError(ctx, a.api.BaseURL(), err)), models.ToastError, 0)
		return
	}
	a.toasts.Add(fmt.Sprintf("%s: saved %d card(s)", name, len(cards)), models.ToastSuccess, 0)
}

// printNewToasts writes each toast once, when it first appears in the list.
// Toasts that appear together are stacked; plain writers get one line each.
func printNewToasts(w io.Writer, list store.Readable[[]models.Toast]) func() {
	plain := !isTerminal(w)
	var mu sync.Mutex
	seen := make(map[models.Toast]bool)
	return list.Subscribe(func(all []models.Toast) {
		mu.Lock()
		defer mu.Unlock()
		current := make(map[models.Toast]bool, len(all))
		var fresh []models.Toast
		for _, t := range all {
			current[t] = true
			if !seen[t] {
				fresh = append(fresh, t)
			}
		}
		seen = current

		switch {
		case len(fresh) == 0:
		case IsJSONOutput():
			for _, t := range fresh {
				writeJSON(w, t)
			}
		case plain:
			for _, t := range fresh {
				fmt.Fprintln(w, toasts.Line(t))
			}
		default:
			fmt.Fprintln(w, toasts.Render(fresh))
		}
	})
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
