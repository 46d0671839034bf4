package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"visibility-backend/internal/analysis"
	"visibility-backend/internal/bootstrap"
	"visibility-backend/internal/shared/config"
)

type analyzerFactory func(cfg config.Config) (*analysis.Analyzer, error)

func defaultAnalyzer(cfg config.Config) (*analysis.Analyzer, error) {
	client, err := bootstrap.NewLLMClient(cfg)
	if err != nil {
		return nil, err
	}
	return bootstrap.NewAnalyzer(cfg, client), nil
}

func newRootCmd(newAnalyzer analyzerFactory) *cobra.Command {
	var (
		provider string
		model    string
		jsonMode bool
	)

	root := &cobra.Command{
		Use:           "visibilityctl",
		Short:         "Run brand visibility analyses against the configured model",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider override (openai|gemini)")
	root.PersistentFlags().StringVar(&model, "model", "", "LLM model override")
	root.PersistentFlags().BoolVar(&jsonMode, "json-mode", false, "request native JSON output from the provider")

	load := func() (*analysis.Analyzer, error) {
		cfg := config.Load()
		if provider != "" {
			cfg.LLMProvider = provider
		}
		if model != "" {
			cfg.LLMModel = model
		}
		if jsonMode {
			cfg.LLMJSONMode = true
		}
		return newAnalyzer(cfg)
	}

	root.AddCommand(newKindsCmd(), newRunCmd(load), newRefineCmd(load))
	return root
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List supported task kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range analysis.Kinds {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}

func newRunCmd(load func() (*analysis.Analyzer, error)) *cobra.Command {
	var (
		body     string
		bodyFile string
	)
	cmd := &cobra.Command{
		Use:   "run <kind>",
		Short: "Run one task kind with a JSON request body",
		Example: `  visibilityctl run brand-visibility --json '{"prompt":"best crm for startups","brand":"Acme"}'
  visibilityctl run trend-scan --file request.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := analysis.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("unknown kind %q (see visibilityctl kinds)", args[0])
			}
			payload, err := readBody(cmd.InOrStdin(), body, bodyFile)
			if err != nil {
				return err
			}
			req, err := analysis.DecodeRequest(kind, payload)
			if err != nil {
				return err
			}
			a, err := load()
			if err != nil {
				return err
			}
			result, err := a.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&body, "json", "", "request body as JSON")
	cmd.Flags().StringVar(&bodyFile, "file", "", "path to a JSON request body, - for stdin")
	return cmd
}

func newRefineCmd(load func() (*analysis.Analyzer, error)) *cobra.Command {
	var (
		prompt     string
		brand      string
		iterations int
	)
	cmd := &cobra.Command{
		Use:   "refine",
		Short: "Iteratively refine a prompt for a brand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := analysis.PromptRefinementRequest{Prompt: prompt, Brand: brand}
			if cmd.Flags().Changed("iterations") {
				req.Iterations = &iterations
			}
			if err := req.Validate(); err != nil {
				return err
			}
			a, err := load()
			if err != nil {
				return err
			}
			out, err := a.Refine(cmd.Context(), req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&prompt, "prompt", "", "prompt to refine")
	cmd.Flags().StringVar(&brand, "brand", "", "brand the prompt should surface")
	cmd.Flags().IntVar(&iterations, "iterations", analysis.DefaultIterations, "number of refinement rounds (1-100)")
	return cmd
}

func readBody(stdin io.Reader, inline, path string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "" && path != "":
		return nil, fmt.Errorf("use either --json or --file, not both")
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case path == "-":
		return io.ReadAll(stdin)
	case path != "":
		return os.ReadFile(path)
	default:
		return nil, fmt.Errorf("a request body is required (--json or --file)")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
