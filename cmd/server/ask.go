package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"research-summary/internal/research"
	"research-summary/internal/summary"
)

var askCmd = &cobra.Command{
	Use:   "ask [topic]",
	Short: "Research a topic and print the summary",
	Long: `Ask runs one research request and prints the parsed summary. Without
--server the providers are called directly using the local configuration;
with --server the request goes through a running instance's HTTP API.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL, _ := cmd.Flags().GetString("server")
		customFile, _ := cmd.Flags().GetString("custom-file")
		format, _ := cmd.Flags().GetString("format")
		quiet, _ := cmd.Flags().GetBool("quiet")

		switch format {
		case "markdown", "text", "json":
		default:
			return fmt.Errorf("unknown format %q (want markdown, text or json)", format)
		}

		query := strings.Join(args, " ")
		custom := ""
		if customFile != "" {
			raw, err := readCustom(customFile)
			if err != nil {
				return err
			}
			custom = string(raw)
		}

		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		var backend research.Backend
		if serverURL != "" {
			backend = research.NewRemote(serverURL, 3*time.Minute)
		} else {
			svc, _, err := buildService(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			backend = svc
		}

		ctrl := research.NewController(backend, pacingFrom(cfg))
		if !quiet {
			last := research.StepIdle
			ctrl.OnChange(func(s research.State) {
				if s.Progress != last && s.ProgressLabel != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), s.ProgressLabel)
				}
				last = s.Progress
			})
		}

		if err := ctrl.Submit(cmd.Context(), query, custom); err != nil {
			return err
		}
		return printState(cmd.OutOrStdout(), ctrl.Snapshot(), format)
	},
}

func init() {
	askCmd.Flags().String("server", "", "base URL of a running research-summary server")
	askCmd.Flags().String("custom-file", "", "summarize this file (or - for stdin) instead of searching")
	askCmd.Flags().String("format", "markdown", "output format: markdown, text or json")
	askCmd.Flags().BoolP("quiet", "q", false, "do not print progress")
	rootCmd.AddCommand(askCmd)
}

func readCustom(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func printState(w io.Writer, s research.State, format string) error {
	query := s.Query
	if strings.TrimSpace(query) == "" {
		query = "custom content"
	}
	sources := make([]summary.Source, 0, len(s.Results))
	for _, r := range s.Results {
		sources = append(sources, summary.Source{Title: r.Title, Link: r.Link})
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "text":
		_, err := io.WriteString(w, summary.Text(query, s.Summary, sources))
		return err
	default:
		md, err := summary.Markdown(query, s.Summary, sources)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, md)
		return err
	}
}
