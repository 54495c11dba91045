package main

import (
	"adaudit/internal/model"
	"fmt"

	"github.com/spf13/cobra"
)

var inspectGroup = &cobra.Group{
	ID:    "inspect",
	Title: "Catalog",
}

func newCatalogCmd() *cobra.Command {
	var (
		bm string
		ch string
	)
	cmd := &cobra.Command{
		Use:     "catalog",
		GroupID: inspectGroup.ID,
		Short:   "List business models, or the questions of one",
		Long: `Without --model, lists the catalog's business models and their question counts.
With --model, prints the questions a session for that model and --channel would ask.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if bm == "" {
				fmt.Fprintf(out, "catalog %s\n", cat.Version)
				for _, seg := range cat.Segments() {
					fmt.Fprintf(out, "  %-10s %2d questions  %s\n", seg.Model, len(seg.Questions), seg.Description)
				}
				return nil
			}

			questions, err := cat.Questions(model.BusinessModel(bm), model.Channel(ch))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s / %s: %d questions\n", bm, ch, len(questions))
			for i, q := range questions {
				fmt.Fprintf(out, "\n%2d. [%s] %s (%s)\n", i+1, q.Category, q.Prompt, q.ID)
				for j, opt := range q.Options {
					marker := " "
					if opt.ActionPlan != nil {
						marker = "!"
					}
					fmt.Fprintf(out, "    %s %d) %-3d %s\n", marker, j, opt.Score, opt.Label)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&bm, "model", "", "business model (products, services, access, audience)")
	cmd.Flags().StringVar(&ch, "channel", string(model.ChannelBoth), "channel (meta, google, both)")
	return cmd
}
