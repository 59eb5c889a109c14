package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sreejagatab/linkedin-qbot/internal/capture"
	"github.com/sreejagatab/linkedin-qbot/internal/config"
	"github.com/sreejagatab/linkedin-qbot/internal/pipeline"
	"github.com/sreejagatab/linkedin-qbot/internal/storage"
)

type profileSummary struct {
	ProfileID string `json:"profile_id"`
	Name      string `json:"name"`
	Headline  string `json:"headline"`
}

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about a stored profile",
	Long: `Ask a question about a stored profile.

Examples:
  qbot ask "What is Alice Smith's current job?"
  qbot ask "Where did jdoe study?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/query", map[string]string{
			"query":   query,
			"user_id": "cli",
		})
		if err != nil {
			return err
		}

		var result pipeline.Result
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		if !result.Success {
			printError("%s", result.Error)
			if len(result.AvailableProfiles) > 0 {
				fmt.Fprintf(os.Stderr, "  Available profiles: %s\n", strings.Join(result.AvailableProfiles, ", "))
			}
			return fmt.Errorf("query failed")
		}

		fmt.Println(result.Response)
		return nil
	},
}

// --- profiles ---

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage stored profiles",
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all loaded profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profiles")
		if err != nil {
			return err
		}

		var summaries []profileSummary
		if err := decodeJSON(resp, &summaries); err != nil {
			return err
		}

		if len(summaries) == 0 {
			fmt.Println("No profiles loaded.")
			return nil
		}

		for _, s := range summaries {
			line := fmt.Sprintf("%s  %s", colorize(colorCyan, s.ProfileID), s.Name)
			if s.Headline != "" {
				line += "  — " + s.Headline
			}
			fmt.Println(line)
		}
		return nil
	},
}

var profilesShowCmd = &cobra.Command{
	Use:   "show <profile-id>",
	Short: "Show a full profile record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/profiles/"+args[0])
		if err != nil {
			return err
		}

		var record any
		if err := decodeJSON(resp, &record); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	},
}

var profilesAddCmd = &cobra.Command{
	Use:   "add <file.json>",
	Short: "Add a profile from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading file: %w", err)
		}

		var record map[string]any
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/profiles", record)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Added profile %s", result["profile_id"])
		return nil
	},
}

func init() {
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesShowCmd)
	profilesCmd.AddCommand(profilesAddCmd)
}

// --- capture ---

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a profile skeleton from an external source",
	Long: `Capture a profile skeleton from an external source.

Examples:
  qbot capture --url https://example.com/in/asmith
  qbot capture --resume ./resume.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		pageURL, _ := cmd.Flags().GetString("url")
		resumePath, _ := cmd.Flags().GetString("resume")

		if pageURL == "" && resumePath == "" {
			return fmt.Errorf("one of --url or --resume is required")
		}

		if resumePath != "" {
			text, err := capture.ResumeText(resumePath)
			if err != nil {
				return err
			}
			fmt.Println(text)
			return nil
		}

		httpClient := &http.Client{Timeout: 15 * time.Second}
		record, err := capture.FromURL(cmd.Context(), httpClient, pageURL)
		if err != nil {
			return err
		}

		save, _ := cmd.Flags().GetBool("save")
		if save {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			resp, err := client.post(cmd.Context(), "/profiles", record)
			if err != nil {
				return err
			}
			var result map[string]string
			if err := decodeJSON(resp, &result); err != nil {
				return err
			}
			printSuccess("Captured and saved profile %s", result["profile_id"])
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	},
}

func init() {
	captureCmd.Flags().String("url", "", "public profile page URL")
	captureCmd.Flags().String("resume", "", "resume PDF to extract text from")
	captureCmd.Flags().Bool("save", false, "save the captured record to the server")
}

// --- history ---

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the query history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent queries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/queries?limit=%d", limit))
		if err != nil {
			return err
		}

		var logs []storage.QueryLog
		if err := decodeJSON(resp, &logs); err != nil {
			return err
		}

		if len(logs) == 0 {
			fmt.Println("No queries found.")
			return nil
		}

		for _, l := range logs {
			query := l.Query
			if len(query) > 80 {
				query = query[:80] + "..."
			}
			marker := colorize(colorGreen, "✓")
			if !l.Success {
				marker = colorize(colorRed, "✗")
			}
			fmt.Printf("%s %s  %s  %s\n",
				marker,
				colorize(colorCyan, l.ID[:8]),
				l.CreatedAt.Format(time.RFC3339),
				query,
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single query log entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/queries/"+args[0])
		if err != nil {
			return err
		}

		var entry any
		if err := decodeJSON(resp, &entry); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entry)
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "maximum number of queries to list")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		for _, k := range config.ShowAll(cfg) {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Reset a configuration value to its default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}

		printSuccess("Unset %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
}
