package main

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/qrda/converter/internal/domain/conversion"
	"github.com/qrda/converter/internal/domain/decode"
	"github.com/qrda/converter/internal/domain/node"
)

func decodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <file>...",
		Short: "Decode QRDA documents and print their trees",
		Long: "Decode one or more QRDA Category III documents. Use - to read from stdin.\n" +
			"The command fails when any document cannot be parsed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			strict, _ := cmd.Flags().GetBool("strict")
			withDiags, _ := cmd.Flags().GetBool("diagnostics")
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (want json or yaml)", format)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			sources, err := readSources(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			svc := conversion.NewService(nil,
				conversion.WithLenient(cfg.DecodeLenient && !strict),
				conversion.WithWorkers(cfg.Workers),
				conversion.WithLogger(logger),
			)
			items, err := svc.DecodeBatch(cmd.Context(), sources)
			if err != nil {
				return err
			}

			if err := writeResults(cmd.OutOrStdout(), items, format, withDiags); err != nil {
				return err
			}

			failed := lo.CountBy(items, func(it conversion.BatchItem) bool { return it.Error != "" })
			if failed > 0 {
				return fmt.Errorf("%d of %d document(s) could not be decoded", failed, len(items))
			}
			return nil
		},
	}
	cmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
	cmd.Flags().Bool("strict", false, "Treat unknown template versions as unresolved")
	cmd.Flags().Bool("diagnostics", false, "Include every diagnostic in the output")
	return cmd
}

func readSources(stdin io.Reader, args []string) ([]conversion.Source, error) {
	sources := make([]conversion.Source, 0, len(args))
	for _, name := range args {
		var (
			data []byte
			err  error
		)
		if name == "-" {
			name = "stdin"
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		sources = append(sources, conversion.Source{Name: name, Data: data})
	}
	return sources, nil
}

type documentOutput struct {
	Name        string              `json:"name" yaml:"name"`
	Tree        *node.Node          `json:"tree,omitempty" yaml:"tree,omitempty"`
	Summary     map[string]int      `json:"summary,omitempty" yaml:"summary,omitempty"`
	Failures    []string            `json:"failures,omitempty" yaml:"failures,omitempty"`
	Diagnostics []decode.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	Error       string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// writeResults prints items as a JSON array or as a stream of YAML documents.
func writeResults(w io.Writer, items []conversion.BatchItem, format string, withDiags bool) error {
	out := lo.Map(items, func(it conversion.BatchItem, _ int) documentOutput {
		doc := documentOutput{Name: it.Name, Error: it.Error}
		if it.Result != nil {
			doc.Tree = it.Result.Tree
			doc.Summary = it.Result.Summary
			doc.Failures = it.Result.Failures
			if withDiags {
				doc.Diagnostics = it.Result.Diagnostics
			}
		}
		return doc
	})

	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, doc := range out {
			if err := enc.Encode(doc); err != nil {
				return fmt.Errorf("encode %s: %w", doc.Name, err)
			}
		}
		return enc.Close()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the known templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			templates := conversion.Templates()
			w := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(templates, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(data))
				return err
			}
			fmt.Fprintf(w, "%-36s %-44s %-12s %s\n", "NAME", "ROOT", "EXTENSION", "KIND")
			for _, t := range templates {
				fmt.Fprintf(w, "%-36s %-44s %-12s %s\n", t.Name, t.Root, t.Extension, t.Kind)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print the catalog as JSON")
	return cmd
}
