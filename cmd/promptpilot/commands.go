package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/kalambet/promptpilot/internal/config"
)

type promptView struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
	Model       string   `json:"model"`
	Public      bool     `json:"public"`
	CreatedAt   string   `json:"created_at"`
}

type planView struct {
	Task     string `json:"task"`
	Analysis struct {
		Actions  []string `json:"actions"`
		Keywords []string `json:"keywords"`
	} `json:"analysis"`
	Prompts []struct {
		Order int `json:"order"`
		promptView
	} `json:"prompts"`
	Rerank struct {
		Outcome string `json:"outcome"`
		Reason  string `json:"reason"`
	} `json:"rerank"`
}

type chainStep struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type chainView struct {
	RunID string `json:"run_id"`
	Trace []struct {
		Step     int    `json:"step"`
		PromptID int64  `json:"promptId"`
		Title    string `json:"title"`
		Output   string `json:"output"`
	} `json:"trace"`
	FinalAnswer string `json:"finalAnswer"`
	Degraded    bool   `json:"degraded"`
	Reason      string `json:"reason"`
	Pending     []struct {
		Step     int    `json:"step"`
		PromptID int64  `json:"promptId"`
		Title    string `json:"title"`
	} `json:"pending"`
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// readContent returns --content, or the file named by --file ("-" is stdin).
func readContent(cmd *cobra.Command) (string, error) {
	content, _ := cmd.Flags().GetString("content")
	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		return content, nil
	}
	var data []byte
	var err error
	if file == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("reading prompt content: %w", err)
	}
	return string(data), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid prompt id %q", arg)
	}
	return id, nil
}

// --- prompts ---

var promptsCmd = &cobra.Command{
	Use:     "prompts",
	Aliases: []string{"prompt"},
	Short:   "Manage the prompt vault",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		tag, _ := cmd.Flags().GetString("tag")
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		q := url.Values{}
		if tag != "" {
			q.Set("tag", tag)
		}
		if search != "" {
			q.Set("search", search)
		}
		q.Set("limit", strconv.Itoa(limit))
		resp, err := client.get(cmd.Context(), "/prompts?"+q.Encode())
		if err != nil {
			return err
		}

		var prompts []promptView
		if err := decodeJSON(resp, &prompts); err != nil {
			return err
		}
		printPromptList(cmd.OutOrStdout(), prompts)
		return nil
	},
}

func printPromptList(w io.Writer, prompts []promptView) {
	if len(prompts) == 0 {
		fmt.Fprintln(w, "No prompts found.")
		return
	}
	for _, p := range prompts {
		line := fmt.Sprintf("%s  %s", colorize(colorCyan, fmt.Sprintf("#%-4d", p.ID)), p.Title)
		if len(p.Tags) > 0 {
			line += "  [" + strings.Join(p.Tags, ", ") + "]"
		}
		fmt.Fprintln(w, line)
	}
}

var promptsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a prompt to the vault",
	Long: `Add a prompt to the vault.

Examples:
  promptpilot prompts add --title "Deep Research Assistant" --content "Research the topic thoroughly..." --tags research
  promptpilot prompts add --title "Executive Summary Writer" --file ./summary.md --model Claude`,
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		tagsStr, _ := cmd.Flags().GetString("tags")
		model, _ := cmd.Flags().GetString("model")
		public, _ := cmd.Flags().GetBool("public")

		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
			return fmt.Errorf("--title and one of --content or --file are required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/prompts", map[string]any{
			"title":       title,
			"description": description,
			"content":     content,
			"tags":        splitTags(tagsStr),
			"model":       model,
			"public":      public,
		})
		if err != nil {
			return err
		}

		var created promptView
		if err := decodeJSON(resp, &created); err != nil {
			return err
		}
		printSuccess("Added prompt #%d %q", created.ID, created.Title)
		return nil
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one prompt as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/prompts/%d", id))
		if err != nil {
			return err
		}
		var p any
		if err := decodeJSON(resp, &p); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

var promptsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change fields of a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		update := map[string]any{}
		for _, name := range []string{"title", "description", "model"} {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetString(name)
				update[name] = v
			}
		}
		if cmd.Flags().Changed("tags") {
			v, _ := cmd.Flags().GetString("tags")
			tags := splitTags(v)
			if tags == nil {
				tags = []string{}
			}
			update["tags"] = tags
		}
		if cmd.Flags().Changed("public") {
			v, _ := cmd.Flags().GetBool("public")
			update["public"] = v
		}
		if cmd.Flags().Changed("content") || cmd.Flags().Changed("file") {
			content, err := readContent(cmd)
			if err != nil {
				return err
			}
			update["content"] = content
		}
		if len(update) == 0 {
			return fmt.Errorf("nothing to change; pass at least one field flag")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.patch(cmd.Context(), fmt.Sprintf("/prompts/%d", id), update)
		if err != nil {
			return err
		}
		var updated promptView
		if err := decodeJSON(resp, &updated); err != nil {
			return err
		}
		printSuccess("Updated prompt #%d", updated.ID)
		return nil
	},
}

var promptsRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a prompt",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.delete(cmd.Context(), fmt.Sprintf("/prompts/%d", id))
		if err != nil {
			return err
		}
		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}
		printSuccess("Deleted prompt #%d", id)
		return nil
	},
}

var promptsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy full-text search over the vault",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		q := url.Values{}
		q.Set("q", query)
		q.Set("limit", strconv.Itoa(limit))
		resp, err := client.get(cmd.Context(), "/prompts/search?"+q.Encode())
		if err != nil {
			return err
		}

		var hits []struct {
			Prompt promptView `json:"prompt"`
			Score  float64    `json:"score"`
		}
		if err := decodeJSON(resp, &hits); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(hits) == 0 {
			fmt.Fprintln(w, "No results found.")
			return nil
		}
		for _, h := range hits {
			fmt.Fprintf(w, "%s %s [score: %.3f]\n", colorize(colorCyan, fmt.Sprintf("#%-4d", h.Prompt.ID)), colorize(colorBold, h.Prompt.Title), h.Score)
			fmt.Fprintf(w, "      %s\n", truncate(h.Prompt.Content, 120))
		}
		return nil
	},
}

func init() {
	promptsListCmd.Flags().String("tag", "", "only prompts carrying this tag")
	promptsListCmd.Flags().String("search", "", "substring of title or content")
	promptsListCmd.Flags().Int("limit", 50, "maximum number of prompts to list")

	for _, c := range []*cobra.Command{promptsAddCmd, promptsEditCmd} {
		c.Flags().String("title", "", "prompt title")
		c.Flags().String("description", "", "short description")
		c.Flags().String("content", "", "prompt content")
		c.Flags().String("file", "", "read prompt content from a file (- for stdin)")
		c.Flags().String("tags", "", "comma-separated tags")
		c.Flags().String("model", "", "target model hint, e.g. GPT-4 or Claude")
		c.Flags().Bool("public", false, "mark the prompt public")
	}

	promptsSearchCmd.Flags().Int("limit", 10, "maximum number of results")

	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsAddCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	promptsCmd.AddCommand(promptsEditCmd)
	promptsCmd.AddCommand(promptsRmCmd)
	promptsCmd.AddCommand(promptsSearchCmd)
}

// --- plan ---

var planCmd = &cobra.Command{
	Use:   "plan <task>",
	Short: "Pick and order vault prompts for a task",
	Long: `Pick and order vault prompts for a task.

Examples:
  promptpilot plan "research AI safety and make a summary"
  promptpilot plan --run "review this design and write a short report"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task := strings.Join(args, " ")
		run, _ := cmd.Flags().GetBool("run")
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.post(cmd.Context(), "/plans", map[string]string{"task": task})
		if err != nil {
			return err
		}
		var plan planView
		if err := decodeJSON(resp, &plan); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if !run {
			if asJSON {
				return printJSON(w, plan)
			}
			printPlan(w, plan)
			return nil
		}

		steps := make([]chainStep, len(plan.Prompts))
		for i, p := range plan.Prompts {
			steps[i] = chainStep{ID: p.ID, Title: p.Title, Content: p.Content}
		}
		if len(steps) == 0 {
			printWarning("The plan is empty; nothing to run.")
			return nil
		}
		printStep("Running %d prompt(s)...", len(steps))

		resp, err = client.post(cmd.Context(), "/executions", map[string]any{"prompts": steps})
		if err != nil {
			return err
		}
		var chain chainView
		if err := decodeJSON(resp, &chain); err != nil {
			return err
		}
		if asJSON {
			return printJSON(w, chain)
		}
		printChain(w, chain)
		return nil
	},
}

func printPlan(w io.Writer, plan planView) {
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Task:"), plan.Task)
	fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Actions:"), strings.Join(plan.Analysis.Actions, " -> "))
	if len(plan.Analysis.Keywords) > 0 {
		fmt.Fprintf(w, "%s %s\n", colorize(colorBold, "Keywords:"), strings.Join(plan.Analysis.Keywords, ", "))
	}
	rerank := statusLabel(plan.Rerank.Outcome)
	if plan.Rerank.Reason != "" {
		rerank += " (" + plan.Rerank.Reason + ")"
	}
	fmt.Fprintf(w, "%s %s\n\n", colorize(colorBold, "Rerank:"), rerank)
	if len(plan.Prompts) == 0 {
		fmt.Fprintln(w, "No prompts selected.")
		return
	}
	for _, p := range plan.Prompts {
		fmt.Fprintf(w, "%d. %s %s\n", p.Order, promptRef(p.ID), p.Title)
	}
}

func printChain(w io.Writer, chain chainView) {
	if chain.Degraded {
		printWarning("Generation unavailable: %s", chain.Reason)
		fmt.Fprintln(w, "Steps that would have run:")
		for _, p := range chain.Pending {
			fmt.Fprintf(w, "%d. %s %s\n", p.Step, promptRef(p.PromptID), p.Title)
		}
		return
	}
	for _, t := range chain.Trace {
		fmt.Fprintf(w, "%s %s\n", colorize(colorBold, fmt.Sprintf("Step %d:", t.Step)), t.Title)
		fmt.Fprintf(w, "  %s\n", truncate(t.Output, 200))
	}
	fmt.Fprintf(w, "\n%s\n%s\n", colorize(colorBold, "Final answer:"), chain.FinalAnswer)
	if chain.RunID != "" {
		fmt.Fprintf(w, "\nrun %s\n", chain.RunID)
	}
}

func init() {
	planCmd.Flags().Bool("run", false, "execute the plan right away")
	planCmd.Flags().Bool("json", false, "print raw JSON")
}

// --- runs ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse chain execution history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent chain runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), fmt.Sprintf("/runs?limit=%d", limit))
		if err != nil {
			return err
		}

		var runs []struct {
			ID          string `json:"id"`
			Status      string `json:"status"`
			StepCount   int    `json:"step_count"`
			FinalAnswer string `json:"final_answer"`
			CreatedAt   string `json:"created_at"`
		}
		if err := decodeJSON(resp, &runs); err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(w, "No runs found.")
			return nil
		}
		for _, r := range runs {
			id := r.ID
			if len(id) > 8 {
				id = id[:8]
			}
			fmt.Fprintf(w, "%s  %s  %-9s %d step(s)  %s\n",
				colorize(colorCyan, id),
				r.CreatedAt,
				statusLabel(r.Status),
				r.StepCount,
				truncate(r.FinalAnswer, 60),
			)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single run with its trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.get(cmd.Context(), "/runs/"+url.PathEscape(args[0]))
		if err != nil {
			return err
		}
		var run any
		if err := decodeJSON(resp, &run); err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), run)
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

// --- pack ---

var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Import or export prompt packs (YAML)",
}

type importResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

var packImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a YAML prompt pack (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("reading pack: %w", err)
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.postRaw(cmd.Context(), "/packs", "application/yaml", data)
		if err != nil {
			return err
		}
		var res importResult
		if err := decodeJSON(resp, &res); err != nil {
			return err
		}
		printSuccess("Imported %d prompt(s), skipped %d already in the vault", res.Created, res.Skipped)
		return nil
	},
}

var packStarterCmd = &cobra.Command{
	Use:   "starter",
	Short: "Import the built-in starter pack",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		resp, err := client.post(cmd.Context(), "/packs/starter", nil)
		if err != nil {
			return err
		}
		var res importResult
		if err := decodeJSON(resp, &res); err != nil {
			return err
		}
		printSuccess("Imported %d starter prompt(s), skipped %d", res.Created, res.Skipped)
		return nil
	},
}

var packExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the vault as a YAML pack",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		name, _ := cmd.Flags().GetString("name")

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		path := "/packs/export"
		if name != "" {
			path += "?name=" + url.QueryEscape(name)
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}
		data, err := readBody(resp)
		if err != nil {
			return err
		}

		if output == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("writing pack: %w", err)
		}
		printSuccess("Pack exported to %s", output)
		return nil
	},
}

func init() {
	packExportCmd.Flags().String("output", "", "output file path (default: stdout)")
	packExportCmd.Flags().String("name", "", "pack name (default: vault owner)")
	packCmd.AddCommand(packImportCmd)
	packCmd.AddCommand(packStarterCmd)
	packCmd.AddCommand(packExportCmd)
}

// --- optimize ---

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Ask the model to rewrite a prompt",
	Long: `Ask the model to rewrite a prompt's title, tags and content.

Pass --id to optimize a stored prompt, and --save to write the result back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetInt64("id")
		save, _ := cmd.Flags().GetBool("save")
		title, _ := cmd.Flags().GetString("title")
		tagsStr, _ := cmd.Flags().GetString("tags")
		model, _ := cmd.Flags().GetString("model")

		content, err := readContent(cmd)
		if err != nil {
			return err
		}
		if save && id == 0 {
			return fmt.Errorf("--save requires --id")
		}
		if id == 0 && strings.TrimSpace(title) == "" && strings.TrimSpace(content) == "" {
			return fmt.Errorf("one of --id, --title, --content or --file is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		draft := map[string]any{"title": title, "content": content, "tags": splitTags(tagsStr), "model": model}
		if id != 0 {
			resp, err := client.get(cmd.Context(), fmt.Sprintf("/prompts/%d", id))
			if err != nil {
				return err
			}
			var p promptView
			if err := decodeJSON(resp, &p); err != nil {
				return err
			}
			draft = map[string]any{"title": p.Title, "content": p.Content, "tags": p.Tags, "model": p.Model}
		}

		resp, err := client.post(cmd.Context(), "/optimize", draft)
		if err != nil {
			return err
		}
		var res struct {
			Title   string   `json:"title"`
			Tags    []string `json:"tags"`
			Content string   `json:"content"`
		}
		if err := decodeJSON(resp, &res); err != nil {
			return err
		}

		if save {
			resp, err := client.patch(cmd.Context(), fmt.Sprintf("/prompts/%d", id), res)
			if err != nil {
				return err
			}
			var updated promptView
			if err := decodeJSON(resp, &updated); err != nil {
				return err
			}
			printSuccess("Saved optimized version of prompt #%d", id)
			return nil
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	optimizeCmd.Flags().Int64("id", 0, "optimize a stored prompt")
	optimizeCmd.Flags().Bool("save", false, "write the optimized prompt back (requires --id)")
	optimizeCmd.Flags().String("title", "", "prompt title")
	optimizeCmd.Flags().String("content", "", "prompt content")
	optimizeCmd.Flags().String("file", "", "read prompt content from a file (- for stdin)")
	optimizeCmd.Flags().String("tags", "", "comma-separated tags")
	optimizeCmd.Flags().String("model", "", "target model hint")
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

		w := cmd.OutOrStdout()
		for _, k := range config.ShowAll(cfg) {
			fmt.Fprintf(w, "  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value. Valid keys:\n  " + strings.Join(config.ValidKeys(), "\n  "),
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

var configSetSecretCmd = &cobra.Command{
	Use:   "set-secret <key>",
	Short: "Store an API key in the platform secret store (value read from stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 64<<10))
		if err != nil {
			return fmt.Errorf("reading secret: %w", err)
		}
		value := strings.TrimSpace(string(data))
		if value == "" {
			return fmt.Errorf("secret value is required on stdin")
		}
		if err := config.SetSecret(args[0], value); err != nil {
			return err
		}
		printSuccess("Stored %s", args[0])
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Remove a configuration value so its default applies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.UnsetKey(args[0]); err != nil {
			return err
		}
		printSuccess("Unset %s", args[0])
		return nil
	},
}

var configDeleteSecretCmd = &cobra.Command{
	Use:   "delete-secret <key>",
	Short: "Remove an API key from the platform secret store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.DeleteSecret(args[0]); err != nil {
			return fmt.Errorf("deleting %s: %w", args[0], err)
		}
		printSuccess("Deleted %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configUnsetCmd)
	configCmd.AddCommand(configSetSecretCmd)
	configCmd.AddCommand(configDeleteSecretCmd)
}
