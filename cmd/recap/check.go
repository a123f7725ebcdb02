package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"recap/internal/slack"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify credentials and connectivity",
	Long: `Verify that recap is configured and can reach Slack.

Checks that the Slack token and Anthropic API key are set and confirms the
Slack token works with an auth test. The signing secret is only required
for the serve command and is reported but never fatal here.

Exits non-zero when a required credential is missing or the auth test fails.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status string      `json:"status"`
	Checks []CheckItem `json:"checks"`
}

// CheckItem is a single verification step.
type CheckItem struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	var checks []CheckItem
	failures := 0

	if err := cfg.ValidateSlack(); err != nil {
		checks = append(checks, CheckItem{Name: "slack_token", Status: "missing", Detail: err.Error()})
		failures++
	} else {
		checks = append(checks, CheckItem{Name: "slack_token", Status: "ok"})

		client, err := slack.New(cfg.SlackToken)
		if err != nil {
			checks = append(checks, CheckItem{Name: "slack_auth", Status: "error", Detail: err.Error()})
			failures++
		} else {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			identity, err := client.AuthTest(ctx)
			if err != nil {
				checks = append(checks, CheckItem{Name: "slack_auth", Status: "error", Detail: err.Error()})
				failures++
			} else {
				checks = append(checks, CheckItem{
					Name:   "slack_auth",
					Status: "ok",
					Detail: fmt.Sprintf("authenticated as %s (team %s)", identity.User, identity.Team),
				})
			}
		}
	}

	if err := cfg.ValidateSummarizer(); err != nil {
		checks = append(checks, CheckItem{Name: "anthropic_api_key", Status: "missing", Detail: err.Error()})
		failures++
	} else {
		checks = append(checks, CheckItem{Name: "anthropic_api_key", Status: "ok"})
	}

	if cfg.SlackSigningSecret == "" {
		checks = append(checks, CheckItem{Name: "signing_secret", Status: "skipped", Detail: "not set; required only for serve"})
	} else {
		checks = append(checks, CheckItem{Name: "signing_secret", Status: "ok"})
	}

	status := "ok"
	if failures > 0 {
		status = "issues"
	}

	if humanOutput {
		if failures == 0 {
			fmt.Println("Configuration check: OK")
		} else {
			fmt.Printf("Configuration check: %d issues found\n", failures)
		}
		fmt.Println()
		for _, c := range checks {
			switch c.Status {
			case "ok":
				if c.Detail != "" {
					fmt.Printf("  [OK]   %s: %s\n", c.Name, c.Detail)
				} else {
					fmt.Printf("  [OK]   %s\n", c.Name)
				}
			case "skipped":
				fmt.Printf("  [SKIP] %s: %s\n", c.Name, c.Detail)
			default:
				fmt.Printf("  [FAIL] %s: %s\n", c.Name, c.Detail)
			}
		}
	} else {
		if err := outputJSON(CheckResult{Status: status, Checks: checks}); err != nil {
			return err
		}
	}

	if failures > 0 {
		os.Exit(ExitConfigError)
	}
	return nil
}
