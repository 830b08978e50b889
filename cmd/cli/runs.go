package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	var (
		siteURL   string
		scenarios []string
		headed    bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay stored scenarios against a site",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getClient()

			body, err := client.Post("/api/v1/executions", map[string]interface{}{
				"url":       siteURL,
				"scenarios": scenarios,
				"headed":    headed,
			})
			if err != nil {
				return err
			}

			var resp runResult
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if flagJSON {
				printJSON(resp)
				return nil
			}

			printMessage(fmt.Sprintf("Run %s against %s", resp.RunID, resp.Domain))

			failed := 0
			for _, sc := range resp.Scenarios {
				printMessage("")
				printMessage(fmt.Sprintf("%s: %s", sc.Name, sc.Status))
				if sc.Error != "" {
					printMessage("  " + sc.Error)
				}
				if sc.Status != "passed" {
					failed++
				}

				rows := make([][]string, 0, len(sc.Steps))
				for _, st := range sc.Steps {
					detail := st.Error
					if st.ScreenshotRef != "" {
						detail += " [" + st.ScreenshotRef + "]"
					}
					rows = append(rows, []string{
						st.Description,
						st.Status,
						fmt.Sprintf("%dms", st.DurationMs),
						detail,
					})
				}
				if len(rows) > 0 {
					printTable([]string{"STEP", "STATUS", "DURATION", "DETAIL"}, rows)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(resp.Scenarios))
			}
			printMessage("")
			printMessage("All scenarios passed")
			return nil
		},
	}

	cmd.Flags().StringVar(&siteURL, "site", "", "target site URL")
	cmd.Flags().StringSliceVar(&scenarios, "scenario", nil, "scenario name to run (repeatable; default all)")
	cmd.Flags().BoolVar(&headed, "headed", false, "run the browser with a visible window")
	cmd.MarkFlagRequired("site")
	return cmd
}
