package main

import (
	"fmt"
	"io"

	"github.com/attriwatch/attriwatch/internal/adapters/csvio"
	"github.com/attriwatch/attriwatch/internal/adapters/modelstore"
	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/spf13/cobra"
)

type vocabOptions struct {
	input   string
	version string
	output  string
	columns []string
}

func newVocabCommand() *cobra.Command {
	opts := &vocabOptions{}
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Build a categorical vocabulary from a training CSV",
		Long: `Build a frozen categorical vocabulary from a training CSV.

Every column holding text values is factorized in order of first
appearance, the same coding a model trained on that file saw. Reference
the output from a model manifest's vocabulary field so that serving
encodes categories identically for every batch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVocab(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "Training CSV, - for stdin")
	f.StringVar(&opts.version, "version", "", "Vocabulary version recorded in the output")
	f.StringVarP(&opts.output, "output", "o", "-", "Vocabulary YAML destination, - for stdout")
	f.StringSliceVar(&opts.columns, "columns", nil, "Only keep these columns (default all text columns)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("version")

	return cmd
}

func runVocab(cmd *cobra.Command, opts *vocabOptions) error {
	in, closeIn, err := openInput(cmd, opts.input)
	if err != nil {
		return err
	}
	table, err := csvio.ReadTable(in)
	closeIn()
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.input, err)
	}

	vocab := features.NewFactorizer(table).Vocabulary(opts.version, opts.columns...)
	for _, col := range opts.columns {
		if _, ok := vocab.Columns[col]; !ok {
			return fmt.Errorf("column %q has no text values in %s", col, opts.input)
		}
	}
	return writeOutput(cmd, opts.output, func(w io.Writer) error {
		return modelstore.WriteVocabulary(w, vocab)
	})
}
