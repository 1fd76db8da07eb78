package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/hupe1980/kernelscore/codec"
	"github.com/hupe1980/kernelscore/persistence"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
		e          env
	)

	root := &cobra.Command{
		Use:           "kernelscore",
		Short:         "Score and train kernel models",
		Long:          `A command-line interface for inspecting, scoring, updating and converting saved kernel models.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = logLevel
			}

			e.cfg = cfg
			if e.logger, err = cfg.Logger(); err != nil {
				return err
			}
			if e.codec, err = cfg.RecordCodec(); err != nil {
				return err
			}
			if e.compression, err = persistence.ParseCompression(cfg.Compression); err != nil {
				return err
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newInspectCmd(&e),
		newScoreCmd(&e),
		newUpdateCmd(&e),
		newRecoverCmd(&e),
		newConvertCmd(&e),
	)

	return root
}

// openInput returns stdin for "" or "-", the named file otherwise.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(path)
}

// eachRecord decodes every non-blank line of r into a fresh T.
func eachRecord[T any](r io.Reader, c codec.Codec, fn func(line int, v *T) error) error {
	lr := codec.NewLineReader(r, c)
	for {
		b, err := lr.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(bytes.TrimSpace(b)) == 0 {
			continue
		}

		v := new(T)
		if err := c.Unmarshal(b, v); err != nil {
			return fmt.Errorf("line %d: %w", lr.Line(), err)
		}
		if err := fn(lr.Line(), v); err != nil {
			return err
		}
	}
}
