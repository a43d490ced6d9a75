package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/AtharvaDeo101/KARA/internal/application/usecase"
	"github.com/AtharvaDeo101/KARA/internal/domain/service"
	"github.com/AtharvaDeo101/KARA/internal/infrastructure/config"
	"github.com/AtharvaDeo101/KARA/internal/infrastructure/csvsource"
	"github.com/AtharvaDeo101/KARA/internal/infrastructure/ml"
	"github.com/AtharvaDeo101/KARA/pkg/observability"
)

const (
	outputJSON  = "json"
	outputTable = "table"
)

var errBatchFailures = errors.New("one or more rows failed")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "karactl",
		Short:         "Course completion predictions from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newPredictCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the karactl version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "karactl %s\n", version)
			return err
		},
	}
}

type predictOptions struct {
	record    string
	csvPath   string
	output    string
	modelPath string
}

func newPredictCmd() *cobra.Command {
	var opts predictOptions

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict completion for one JSON record or every row of a CSV file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPredict(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.record, "json", "", "learner-course record as a JSON object")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "CSV file with one record per row")
	cmd.Flags().StringVarP(&opts.output, "output", "o", outputTable, "batch output format: table|json")
	cmd.Flags().StringVar(&opts.modelPath, "model", "", "model artifact path (default $MODEL_PATH)")
	cmd.MarkFlagsMutuallyExclusive("json", "csv")
	cmd.MarkFlagsOneRequired("json", "csv")
	return cmd
}

func runPredict(cmd *cobra.Command, opts predictOptions) error {
	if opts.output != outputJSON && opts.output != outputTable {
		return fmt.Errorf("unknown output format %q", opts.output)
	}

	predict, err := buildPredictor(opts.modelPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.record != "" {
		raw, err := decodeRecord(opts.record)
		if err != nil {
			return err
		}
		resp, err := predict.Execute(cmd.Context(), raw)
		if err != nil {
			return err
		}
		return writeJSON(out, resp)
	}

	records, err := csvsource.ReadFile(opts.csvPath)
	if err != nil {
		return err
	}
	items := usecase.NewPredictBatch(predict, 0).Execute(cmd.Context(), records)

	if opts.output == outputJSON {
		err = writeJSON(out, items)
	} else {
		_, err = fmt.Fprintln(out, renderBatchTable(items))
	}
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.Error != "" {
			return errBatchFailures
		}
	}
	return nil
}

func buildPredictor(modelPath string) (*usecase.PredictCompletion, error) {
	if modelPath == "" {
		if err := config.LoadDotEnv(); err != nil {
			return nil, err
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		modelPath = cfg.ModelPath
	}

	pipeline, err := ml.LoadFile(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}

	return usecase.NewPredictCompletion(
		service.NewValidator(),
		service.NewPredictionEngine(pipeline),
		nil,
		observability.NopLogger(),
	), nil
}

func decodeRecord(s string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid --json record: %w", err)
	}
	if raw == nil {
		return nil, errors.New("invalid --json record: expected a JSON object")
	}
	return raw, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

