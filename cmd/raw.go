// ABOUTME: raw command: unauthenticated GET and DELETE against any endpoint
// ABOUTME: Prints the JSON body as returned

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/tcg-binder/internal/config"
	"github.com/markalston/tcg-binder/internal/simpleapi"
)

var rawCmd = &cobra.Command{
	Use:   "raw",
	Short: "Send unauthenticated requests to the backend",
}

var rawGetCmd = &cobra.Command{
	Use:   "get <endpoint>",
	Short: "GET an endpoint, e.g. /api/sets?licence=pokemon",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int { return runRaw(ctx, os.Stdout, http.MethodGet, args[0]) })
	},
}

var rawDeleteCmd = &cobra.Command{
	Use:   "delete <endpoint>",
	Short: "DELETE an endpoint",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exitWith(func(ctx context.Context) int { return runRaw(ctx, os.Stdout, http.MethodDelete, args[0]) })
	},
}

func init() {
	rawCmd.AddCommand(rawGetCmd, rawDeleteCmd)
	rootCmd.AddCommand(rawCmd)
}

func runRaw(ctx context.Context, w io.Writer, method, endpoint string) int {
	cfg, err := config.Load(config.Options{ConfigFile: configFile})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	url := GetAPIURL(cfg)
	c := simpleapi.New(url, simpleapi.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))

	var out interface{}
	switch method {
	case http.MethodDelete:
		err = c.Delete(ctx, endpoint, &out)
	default:
		err = c.Get(ctx, endpoint, &out, nil)
	}
	if err != nil {
		var httpErr *simpleapi.HTTPError
		if errors.As(err, &httpErr) {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 1
		}
		fmt.Fprintf(w, "Error: cannot connect to backend at %s: %v\n", url, err)
		return 2
	}

	writeJSON(w, out)
	return 0
}
