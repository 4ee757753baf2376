package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"carrier-search-portal/internal/domain"
	"carrier-search-portal/internal/services"

	"github.com/spf13/cobra"
)

var (
	searchFrom    string
	searchTo      string
	searchWithMap bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search carriers between two cities",
	Example: `  portal search --from "New York" --to "Washington DC"
  portal search --from sf --to la --map`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		state := a.portal.Search.Submit(ctx, searchFrom, searchTo)
		if err := printSearchState(cmd.OutOrStdout(), state); err != nil {
			return err
		}
		if state.Error != "" {
			return errors.New(state.Error)
		}

		if !searchWithMap {
			return nil
		}
		overlays, err := a.portal.RouteMap(ctx, searchFrom, searchTo)
		if err != nil {
			return errors.New(domain.UserMessage(err))
		}
		return printRoutes(cmd.OutOrStdout(), overlays)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or clear recent searches",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent searches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		entries := a.portal.History.List(ctx)
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recent searches.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tFROM\tTO\tRESULTS\tWHEN")
		for _, e := range entries {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", e.ID, e.From, e.To, e.ResultCount, e.Timestamp)
		}
		return tw.Flush()
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recent searches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		if !a.portal.History.Clear(ctx) {
			return errors.New("search history could not be cleared: storage unavailable")
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Search history cleared.")
		return nil
	},
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change display preferences",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the current preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		return writeJSON(cmd.OutOrStdout(), a.portal.Preferences.Get(ctx))
	},
}

var (
	prefTheme        string
	prefMapType      string
	prefAlternatives string
)

var prefsSetCmd = &cobra.Command{
	Use:     "set",
	Short:   "Update one or more preferences",
	Example: `  portal prefs set --theme dark --alternatives=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := preferencesPatch(cmd)
		if err != nil {
			return err
		}
		if patch.Empty() {
			return errors.New("nothing to update: pass --theme, --map-type or --alternatives")
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		return writeJSON(cmd.OutOrStdout(), a.portal.Preferences.Update(ctx, patch))
	},
}

var validMapTypes = map[string]bool{"roadmap": true, "satellite": true, "hybrid": true, "terrain": true}

func preferencesPatch(cmd *cobra.Command) (domain.PreferencesPatch, error) {
	var patch domain.PreferencesPatch
	flags := cmd.Flags()

	if flags.Changed("theme") {
		t := domain.Theme(prefTheme)
		if !t.Valid() {
			return patch, fmt.Errorf("invalid theme %q: want light or dark", prefTheme)
		}
		patch.Theme = &t
	}
	if flags.Changed("map-type") {
		if !validMapTypes[prefMapType] {
			return patch, fmt.Errorf("invalid map type %q: want roadmap, satellite, hybrid or terrain", prefMapType)
		}
		mt := prefMapType
		patch.MapType = &mt
	}
	if flags.Changed("alternatives") {
		on, err := strconv.ParseBool(prefAlternatives)
		if err != nil {
			return patch, fmt.Errorf("invalid --alternatives %q: %w", prefAlternatives, err)
		}
		patch.ShowAlternativeRoutes = &on
	}
	return patch, nil
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the carrier API and portal storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.close()

		out := cmd.OutOrStdout()
		storageOK := a.portal.History.Available(ctx)
		fmt.Fprintf(out, "storage:     %s\n", okString(storageOK))

		status, apiErr := a.client.Health(ctx)
		if apiErr != nil {
			fmt.Fprintf(out, "carrier api: unavailable (%v)\n", apiErr)
			return fmt.Errorf("carrier API at %s is unhealthy", a.client.BaseURL())
		}
		fmt.Fprintf(out, "carrier api: %s\n", status.Status)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchFrom, "from", "", "origin city")
	searchCmd.Flags().StringVar(&searchTo, "to", "", "destination city")
	searchCmd.Flags().BoolVar(&searchWithMap, "map", false, "also compute the driving routes")

	prefsSetCmd.Flags().StringVar(&prefTheme, "theme", "", "light or dark")
	prefsSetCmd.Flags().StringVar(&prefMapType, "map-type", "", "roadmap, satellite, hybrid or terrain")
	prefsSetCmd.Flags().StringVar(&prefAlternatives, "alternatives", "", "show alternative routes (true or false)")
}

func printSearchState(w io.Writer, state services.SearchState) error {
	if jsonOutput {
		return writeJSON(w, state)
	}
	if state.Error != "" {
		return nil
	}
	if len(state.Carriers) == 0 {
		fmt.Fprintln(w, "No carriers found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CARRIER\tTRUCKS/DAY")
	for _, c := range state.Carriers {
		fmt.Fprintf(tw, "%s\t%g\n", c.Name, c.TrucksPerDay)
	}
	return tw.Flush()
}

func printRoutes(w io.Writer, overlays []domain.RouteOverlay) error {
	if jsonOutput {
		return writeJSON(w, overlays)
	}
	for _, o := range overlays {
		fmt.Fprintf(w, "route %d: %s (%s)\n", o.RouteIndex+1, o.Route.Summary, o.StrokeColor)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func okString(ok bool) string {
	if ok {
		return "ok"
	}
	return "unavailable"
}
