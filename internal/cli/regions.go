package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hotel-curator/internal/adapter/rest"
	"hotel-curator/internal/cli/output"
	"hotel-curator/internal/domain"
)

func newRegionsCommand(env *environment) *cobra.Command {
	var language string
	cmd := &cobra.Command{
		Use:   "regions <query>",
		Short: "Look up region ids for a destination",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := env.printer(cmd)
			if err != nil {
				return err
			}
			app, err := env.app(cmd)
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			defer app.Close()

			regions, err := app.Inventory.SuggestRegion(cmd.Context(), strings.Join(args, " "), language)
			if err != nil {
				return fmt.Errorf("suggest regions: %w", err)
			}
			return renderRegions(p, regions)
		},
	}
	cmd.Flags().StringVar(&language, "language", domain.DefaultLanguage, "suggestion language")
	return cmd
}

func renderRegions(p *output.Printer, regions []domain.Region) error {
	if len(regions) == 0 {
		p.Warning("no regions found")
		return nil
	}
	if city := rest.PickCity(regions); city != nil {
		p.Success("best match: %s (%d)", city.Name, city.ID)
	}
	t := output.NewTable(p.Out(), []string{"ID", "Name", "Type", "Country"})
	for _, r := range regions {
		t.AddRow([]string{strconv.FormatInt(r.ID, 10), r.Name, r.Type, r.CountryCode})
	}
	return t.Render()
}
