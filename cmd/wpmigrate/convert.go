package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/wpmigrate/internal/convert"
	"github.com/dgallion1/wpmigrate/internal/source"
)

func newConvertCmd(a *app) *cobra.Command {
	var strategyName string
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a local file and print the JSON tree",
		Long: `Convert a local .html, .md, .txt, .csv, .docx or .pdf file and print the
result as JSON. Use "-" to read HTML from stdin. Nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, err := convert.ParseStrategy(strategyName)
			if err != nil {
				return err
			}
			doc, err := loadFile(args[0], cmd.InOrStdin(), source.LoaderOptions{PDFFallbackPdftotext: a.cfg.PDFFallbackPdftotext})
			if err != nil {
				return err
			}
			result, err := a.conv.Convert(strategy, doc.Body)
			if err != nil {
				return err
			}
			a.log.Debug("converted file", "file", args[0], "strategy", strategy)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&strategyName, "strategy", "document", "Conversion strategy: article, page or document")
	return cmd
}

func loadFile(path string, stdin io.Reader, opts source.LoaderOptions) (*source.Document, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return &source.Document{Body: string(data)}, nil
	}
	loader, err := opts.ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := loader.Load(f, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return doc, nil
}
