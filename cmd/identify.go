package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nesventory/identifier/internal/config"
	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/review"
	"github.com/nesventory/identifier/internal/setup"
)

func newIdentifyCmd(getConfig func() *config.Config) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "identify <image>",
		Short: "Identify the collectibles in one photograph",
		Args:  cobra.ExactArgs(1),
		Example: `  identifier identify ./photos/church.jpg
  identifier identify ./photos/church.jpg --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			mimeType := mime.TypeByExtension(filepath.Ext(args[0]))
			if mimeType == "" {
				mimeType = http.DetectContentType(data)
			}

			svc, err := setup.Service(cfg, setup.GeminiKeys(cfg))
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if cfg.Review.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Review.Timeout)
				defer cancel()
			}

			candidates, err := svc.Identify(ctx, models.NewImagePayload(data, mimeType))
			if err != nil {
				return err
			}

			bounds := review.YearBounds{Min: cfg.Review.FoundingYear, Max: time.Now().Year() + 1}
			views := make([]review.ItemView, len(candidates))
			for i, c := range candidates {
				views[i] = review.View(i, models.ReviewEntry{Item: c}, bounds)
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(views)
			}

			printCandidates(cmd, views)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print item views as JSON")
	return cmd
}

func printCandidates(cmd *cobra.Command, views []review.ItemView) {
	if len(views) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No collectibles identified")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "Name", "Series", "Years", "Rarity", "Warning", "Confidence", "Genuine"})
	for _, v := range views {
		genuine := "yes"
		if v.Status == review.StatusNotRecognized {
			genuine = "not recognized"
		}
		t.AppendRow(table.Row{
			v.Index + 1,
			v.Item.Name,
			v.Item.Series,
			years(v.Item),
			v.Rarity,
			v.Warning,
			fmt.Sprintf("%.0f%%", v.ConfidenceScore),
			genuine,
		})
	}
	t.Render()
}

func years(item models.CandidateItem) string {
	from, to := "?", "present"
	if item.YearIntroduced != nil {
		from = fmt.Sprint(*item.YearIntroduced)
	}
	if item.YearRetired != nil {
		to = fmt.Sprint(*item.YearRetired)
	}
	return from + "-" + to
}
