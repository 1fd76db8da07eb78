package main

import (
	"fmt"
	"strconv"

	"github.com/hupe1980/kernelscore"
	"github.com/hupe1980/kernelscore/feature"
	"github.com/hupe1980/kernelscore/kernel"
	"github.com/hupe1980/kernelscore/persistence"
	"github.com/hupe1980/kernelscore/wal"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

func newInspectCmd(e *env) *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a summary of a saved model",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, name, err := e.cfg.Resolve(ctx, modelPath)
			if err != nil {
				return err
			}
			m, info, err := persistence.Inspect(ctx, store, name, persistence.WithModelOptions(e.modelOptions()...))
			if err != nil {
				return err
			}

			kinds := make(map[kernel.Kind]int)
			for _, sv := range m.SupportVectors() {
				kinds[sv.Kind()]++
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "model_type:      %s\n", m.Header().ModelType)
			fmt.Fprintf(out, "compression:     %s\n", info.Compression)
			fmt.Fprintf(out, "dictionary_size: %d\n", m.Dictionary().Size())
			fmt.Fprintf(out, "support_vectors: %d\n", len(m.SupportVectors()))
			for _, k := range []kernel.Kind{kernel.Linear, kernel.Polynomial, kernel.RBF, kernel.ArcCosine, kernel.Sigmoid} {
				if n := kinds[k]; n > 0 {
					fmt.Fprintf(out, "  %-12s %d\n", k.String()+":", n)
				}
			}
			fmt.Fprintf(out, "raw_bytes:       %d\n", info.RawBytes)
			fmt.Fprintf(out, "stored_bytes:    %d\n", info.StoredBytes)
			fmt.Fprintf(out, "checksum:        %08x\n", info.Checksum)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model path")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func newScoreCmd(e *env) *cobra.Command {
	var (
		modelPath   string
		inputPath   string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score feature vectors read as JSON lines",
		Long: `Reads one feature vector per line, for example
{"floats":{"loc":{"lat":37.5,"lng":-122.1}}}
and prints one score per line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			m, err := e.openModel(ctx, modelPath)
			if err != nil {
				return err
			}

			in, err := openInput(cmd, inputPath)
			if err != nil {
				return err
			}
			defer in.Close()

			var items []feature.Sparse
			if err := eachRecord(in, e.codec, func(_ int, fv *feature.Vector) error {
				items = append(items, fv)
				return nil
			}); err != nil {
				return err
			}

			g := kernelscore.NewGuarded(m, kernelscore.WithBatchConcurrency(concurrency))
			scores, err := g.ScoreBatch(ctx, items)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, s := range scores {
				fmt.Fprintln(out, strconv.FormatFloat(s, 'g', -1, 64))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model path")
	cmd.Flags().StringVar(&inputPath, "input", "-", "input file (- for stdin)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 8, "parallel scoring workers")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

// updateLine is one line of update input.
type updateLine struct {
	Gradient float64         `json:"gradient"`
	Features *feature.Vector `json:"features"`
}

func newUpdateCmd(e *env) *cobra.Command {
	var (
		modelPath    string
		inputPath    string
		outPath      string
		journalDir   string
		learningRate float64
		ratePerSec   float64
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Apply online updates and save the result",
		Long: `Reads one update per line, for example
{"gradient":0.5,"features":{"floats":{"loc":{"lat":37.5}}}}
applies them in order with the given learning rate and saves the model.

With --journal every update is journaled before it is applied and the journal
is truncated once the result is saved. Updates left over from an interrupted
run are applied with the recover command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			outStore, outName, err := e.cfg.Resolve(ctx, outPath)
			if err != nil {
				return err
			}

			pm, err := persistence.NewManager(persistence.ManagerOptions{
				Store:          outStore,
				Name:           outName,
				WALPath:        journalDir,
				Compression:    e.compression,
				AutoCheckpoint: true,
				WALOptions: []func(*wal.Options){
					func(o *wal.Options) {
						o.Codec = e.codec
						o.DurabilityMode = wal.DurabilitySync
					},
				},
			})
			if err != nil {
				return err
			}
			defer pm.Close()

			if j := pm.WAL(); j != nil {
				n, err := j.Len()
				if err != nil {
					return err
				}
				if n > 0 {
					return fmt.Errorf("journal %s holds %d updates from an interrupted run, apply them with recover first", journalDir, n)
				}
			}

			m, err := e.openModel(ctx, modelPath)
			if err != nil {
				return err
			}

			g := kernelscore.NewGuarded(m, e.modelOptions()...)
			u := kernelscore.NewUpdater(g, func(o *kernelscore.UpdaterOptions) {
				o.Journal = pm.WAL()
				o.Logger = e.logger
				if ratePerSec > 0 {
					o.Limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
				}
			})

			in, err := openInput(cmd, inputPath)
			if err != nil {
				_ = u.Close()
				return err
			}
			defer in.Close()

			applied := 0
			err = eachRecord(in, e.codec, func(line int, ul *updateLine) error {
				if err := u.Submit(ctx, kernelscore.Update{
					Gradient:     ul.Gradient,
					LearningRate: learningRate,
					Features:     ul.Features,
				}); err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				applied++
				return nil
			})
			if cerr := u.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			info, err := pm.Snapshot(ctx, g)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "applied %d updates, saved %d support vectors to %s\n", applied, info.Records, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model path")
	cmd.Flags().StringVar(&inputPath, "input", "-", "update file (- for stdin)")
	cmd.Flags().StringVar(&outPath, "out", "", "output model path")
	cmd.Flags().StringVar(&journalDir, "journal", "", "journal directory (optional)")
	cmd.Flags().Float64Var(&learningRate, "lr", 0.01, "learning rate")
	cmd.Flags().Float64Var(&ratePerSec, "rate", 0, "maximum updates per second (0 for unlimited)")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newRecoverCmd(e *env) *cobra.Command {
	var (
		modelPath  string
		journalDir string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Replay journaled updates onto a saved model",
		Long: `Loads --model, replays every update in --journal on top of it, saves the
result to --out and truncates the journal. A missing --model starts from an
empty model.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, name, err := e.cfg.Resolve(ctx, modelPath)
			if err != nil {
				return err
			}

			pm, err := persistence.NewManager(persistence.ManagerOptions{
				Store:   store,
				Name:    name,
				WALPath: journalDir,
				WALOptions: []func(*wal.Options){
					func(o *wal.Options) { o.Codec = e.codec },
				},
			})
			if err != nil {
				return err
			}
			defer pm.Close()

			m, n, err := pm.Recover(ctx, e.modelOptions()...)
			if err != nil {
				return err
			}

			info, err := e.saveModel(ctx, outPath, m, e.compression)
			if err != nil {
				return err
			}
			if err := pm.Checkpoint(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "replayed %d updates, saved %d support vectors to %s\n", n, info.Records, outPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model path")
	cmd.Flags().StringVar(&journalDir, "journal", "", "journal directory")
	cmd.Flags().StringVar(&outPath, "out", "", "output model path")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("journal")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func newConvertCmd(e *env) *cobra.Command {
	var (
		modelPath   string
		outPath     string
		compression string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Rewrite a model with another compression or codec",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c := e.compression
			if cmd.Flags().Changed("compression") {
				var err error
				if c, err = persistence.ParseCompression(compression); err != nil {
					return err
				}
			}

			m, err := e.openModel(ctx, modelPath)
			if err != nil {
				return err
			}

			info, err := e.saveModel(ctx, outPath, m, c)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %d -> %d bytes)\n", outPath, info.Compression, info.RawBytes, info.StoredBytes)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model path")
	cmd.Flags().StringVar(&outPath, "out", "", "output model path")
	cmd.Flags().StringVar(&compression, "compression", "none", "none, zstd or lz4")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
