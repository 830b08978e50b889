package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newScenariosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Manage stored scenarios",
	}

	cmd.AddCommand(newScenariosListCmd())
	return cmd
}

func newScenariosListCmd() *cobra.Command {
	var siteURL string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List scenarios stored for a site",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getClient()

			query := url.Values{}
			query.Set("url", siteURL)
			body, err := client.Get("/api/v1/scenarios", query)
			if err != nil {
				return err
			}

			var resp listScenariosResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if flagJSON {
				printJSON(resp)
				return nil
			}

			if len(resp.Scenarios) == 0 {
				printMessage("No scenarios stored for " + resp.Domain)
				return nil
			}

			rows := make([][]string, 0, len(resp.Scenarios))
			for _, sc := range resp.Scenarios {
				rows = append(rows, []string{sc.ID, sc.Name, strconv.Itoa(sc.StepCount), sc.CreatedAt})
			}
			printTable([]string{"ID", "NAME", "STEPS", "CREATED"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&siteURL, "site", "", "target site URL")
	cmd.MarkFlagRequired("site")
	return cmd
}
