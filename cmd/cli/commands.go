package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(optionsCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(queueCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(resultCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(metricsCmd)

	loginCmd.Flags().String("password", os.Getenv("COURTQUEUE_PASSWORD"), "Admin password")

	for _, cmd := range []*cobra.Command{queueCmd, registerCmd} {
		cmd.Flags().String("tournament", "", "Tournament title")
		cmd.Flags().String("place", "", "Place")
		cmd.Flags().String("court", "", "Court")
		cmd.Flags().String("group", "", "Group name, for informal group matches")
	}
	for _, cmd := range []*cobra.Command{registerCmd, editCmd} {
		cmd.Flags().String("round", "", "Round type")
		cmd.Flags().String("gender", "", "Gender")
		cmd.Flags().String("match-type", "", "Match type")
	}
	editCmd.Flags().String("player1", "", "New name of the first player")
	editCmd.Flags().String("player2", "", "New name of the second player")
	resultCmd.Flags().Bool("dry-run", false, "Record the result without sending the Slack notification")

	for _, cmd := range []*cobra.Command{resultsCmd, exportCmd} {
		for _, name := range []string{"kind", "tournament", "place", "court", "group", "round_type", "gender", "match_type", "player"} {
			cmd.Flags().String(name, "", "Filter results by "+name)
		}
	}
	exportCmd.Flags().StringP("out", "o", "results.xlsx", "File to write the workbook to")
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List the configured tournaments, courts, groups and tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/options")
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange the admin password for a token",
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		return performRequest(http.MethodPost, "/auth/login", map[string]string{"password": password})
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the pending matches of a court or group",
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{}
		if group, _ := cmd.Flags().GetString("group"); group != "" {
			q.Set("group", group)
		} else {
			for _, name := range []string{"tournament", "place", "court"} {
				v, _ := cmd.Flags().GetString(name)
				q.Set(name, v)
			}
		}
		return performGetRequest("/queue?" + q.Encode())
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <player1> <player2>",
	Short: "Register a match at the end of a queue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flag := func(name string) string {
			v, _ := cmd.Flags().GetString(name)
			return v
		}
		body := map[string]any{"player1": args[0], "player2": args[1]}
		if group := flag("group"); group != "" {
			body["scope"] = map[string]string{"kind": "group", "group": group}
		} else {
			body["scope"] = map[string]string{
				"kind":       "official",
				"tournament": flag("tournament"),
				"place":      flag("place"),
				"court":      flag("court"),
			}
			if tags := changedTags(cmd); len(tags) > 0 {
				body["tags"] = tags
			}
		}
		return performRequest(http.MethodPost, "/matches", body)
	},
}

// changedTags returns the tag flags the user actually passed, keyed by their JSON name.
func changedTags(cmd *cobra.Command) map[string]string {
	tags := map[string]string{}
	for flagName, key := range map[string]string{"round": "round_type", "gender": "gender", "match-type": "match_type"} {
		if cmd.Flags().Changed(flagName) {
			tags[key], _ = cmd.Flags().GetString(flagName)
		}
	}
	return tags
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change the players or tags of a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := map[string]string{
			"round":      "round_type",
			"gender":     "gender",
			"match-type": "match_type",
			"player1":    "player1",
			"player2":    "player2",
		}
		body := map[string]string{}
		for flagName, key := range fields {
			if cmd.Flags().Changed(flagName) {
				body[key], _ = cmd.Flags().GetString(flagName)
			}
		}
		if len(body) == 0 {
			return fmt.Errorf("nothing to edit")
		}
		return performRequest(http.MethodPatch, "/matches/"+args[0], body)
	},
}

var resultCmd = &cobra.Command{
	Use:   "result <id> <score1> <score2>",
	Short: "Record the final score of a match",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		score1, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid score1: %w", err)
		}
		score2, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid score2: %w", err)
		}
		endpoint := "/matches/" + args[0] + "/result"
		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			endpoint += "?dry_run=true"
		}
		return performRequest(http.MethodPost, endpoint, map[string]int{"score1": score1, "score2": score2})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a match",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodDelete, "/matches/"+args[0], nil)
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "List finished matches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/results?" + resultFilters(cmd).Encode())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download finished matches as an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		resp, err := http.Get(host + "/results/export?" + resultFilters(cmd).Encode())
		if err != nil {
			return fmt.Errorf("failed to make request: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("export failed with status %d: %s", resp.StatusCode, body)
		}

		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out, err)
		}
		defer f.Close()
		n, err := io.Copy(f, resp.Body)
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Printf("Wrote %d bytes to %s\n", n, out)
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func resultFilters(cmd *cobra.Command) url.Values {
	q := url.Values{}
	for _, name := range []string{"kind", "tournament", "place", "court", "group", "round_type", "gender", "match_type", "player"} {
		if v, _ := cmd.Flags().GetString(name); v != "" {
			q.Set(name, v)
		}
	}
	return q
}

func performGetRequest(endpoint string) error {
	return performRequest(http.MethodGet, endpoint, nil)
}

func performRequest(method, endpoint string, payload any) error {
	url := host + endpoint
	fmt.Printf("Making request to %s %s\n", method, url)

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(respBody))

	return nil
}
