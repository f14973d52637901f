package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/viant/vecserve/builder"
	"github.com/viant/vecserve/config"
	"github.com/viant/vecserve/logging"
)

var (
	inputPath string
	outDir    string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an index artifact from a JSON Lines corpus",
	Long: `Reads {"text": ..., "metadata": {...}} records, embeds them with the
configured embedder and writes index.vsx and documents.db into --out.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger := logging.Configure(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

		f, err := os.Open(inputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		docs, err := builder.ReadDocuments(f)
		if err != nil {
			return err
		}
		res, err := builder.Build(cmd.Context(), cfg, docs, outDir, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "artifact %s: %d documents, dim %d\n", res.ArtifactID, res.Documents, res.Dim)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&inputPath, "input", "", "JSON Lines corpus")
	buildCmd.Flags().StringVar(&outDir, "out", "", "artifact output directory")
	_ = buildCmd.MarkFlagRequired("input")
	_ = buildCmd.MarkFlagRequired("out")
}
