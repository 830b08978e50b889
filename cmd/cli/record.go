package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Manage recording sessions",
	}

	cmd.AddCommand(newRecordStartCmd())
	cmd.AddCommand(newRecordStepCmd())
	cmd.AddCommand(newRecordStopCmd())
	return cmd
}

func newRecordStartCmd() *cobra.Command {
	var siteURL, name string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Open a new recording session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getClient()

			body, err := client.Post("/api/v1/recordings", map[string]string{
				"url":           siteURL,
				"scenario_name": name,
			})
			if err != nil {
				return err
			}

			var resp startRecordingResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if flagJSON {
				printJSON(resp)
				return nil
			}
			printMessage("Recording session started: " + resp.SessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&siteURL, "site", "", "target site URL")
	cmd.Flags().StringVar(&name, "name", "", "scenario name")
	cmd.MarkFlagRequired("site")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newRecordStepCmd() *cobra.Command {
	var (
		sessionID    string
		kind         string
		description  string
		selector     string
		value        string
		expectedText string
		stepURL      string
	)

	cmd := &cobra.Command{
		Use:   "step",
		Short: "Append a step to a recording session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getClient()

			st := stepBody{
				Kind:         kind,
				Description:  description,
				Selector:     selector,
				ExpectedText: expectedText,
				Payload: stepPayload{
					Value: value,
					URL:   stepURL,
				},
			}

			body, err := client.Post("/api/v1/recordings/"+sessionID+"/steps", st)
			if err != nil {
				return err
			}

			var resp addStepResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if flagJSON {
				printJSON(resp)
				return nil
			}
			printMessage(fmt.Sprintf("Step recorded (%d total)", resp.StepCount))
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "recording session ID")
	cmd.Flags().StringVar(&kind, "kind", "click", "step kind (login, navigation, action, click, fill, select, check, uncheck)")
	cmd.Flags().StringVar(&description, "description", "", "step description")
	cmd.Flags().StringVar(&selector, "selector", "", "CSS selector")
	cmd.Flags().StringVar(&value, "value", "", "value for fill/select steps")
	cmd.Flags().StringVar(&expectedText, "expect", "", "text expected to appear after the step")
	cmd.Flags().StringVar(&stepURL, "to", "", "URL for navigation steps")
	cmd.MarkFlagRequired("session")
	cmd.MarkFlagRequired("description")
	return cmd
}

func newRecordStopCmd() *cobra.Command {
	var sessionID, outFile string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop a recording session and print the generated script",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := getClient()

			body, err := client.Post("/api/v1/recordings/"+sessionID+"/stop", nil)
			if err != nil {
				return err
			}

			var resp stopRecordingResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if outFile != "" {
				if err := os.WriteFile(outFile, []byte(resp.Script), 0644); err != nil {
					return fmt.Errorf("failed to write script: %w", err)
				}
			}

			if flagJSON {
				printJSON(resp)
				return nil
			}

			printMessage(fmt.Sprintf("Scenario %q saved for %s (%d steps)", resp.ScenarioName, resp.Domain, resp.StepCount))
			if resp.ScriptRef != "" {
				printMessage("Script stored at " + resp.ScriptRef)
			}
			if outFile != "" {
				printMessage("Script written to " + outFile)
			} else {
				printMessage("")
				printMessage(resp.Script)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "recording session ID")
	cmd.Flags().StringVar(&outFile, "out", "", "write the generated script to a file")
	cmd.MarkFlagRequired("session")
	return cmd
}
