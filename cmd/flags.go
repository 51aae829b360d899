package cmd

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// bindFlagToViper lets an explicitly set flag override the configured key.
// Unset flags fall through to the config file and environment.
func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// openInput opens path for reading, "-" meaning stdin. Files ending in .gz
// are decompressed transparently.
func openInput(cmd *cobra.Command, path string) (io.Reader, func() error, error) {
	var (
		reader  = cmd.InOrStdin()
		closers []func() error
	)
	if path != "-" {
		file, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, nil, fmt.Errorf("open %s: %w", path, err)
		}
		reader = file
		closers = append(closers, file.Close)

		if strings.HasSuffix(strings.ToLower(path), ".gz") {
			gzr, err := gzip.NewReader(file)
			if err != nil {
				file.Close()
				return nil, nil, fmt.Errorf("open gzip reader: %w", err)
			}
			reader = gzr
			closers = append([]func() error{gzr.Close}, closers...)
		}
	}
	return reader, closeAll(closers), nil
}

// openOutput opens path for writing, "-" meaning stdout, optionally gzip
// compressed.
func openOutput(cmd *cobra.Command, path string, gzipEnabled bool) (io.Writer, func() error, error) {
	var (
		writer   = cmd.OutOrStdout()
		closeFns []func() error
	)
	if path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output directory: %w", err)
		}
		file, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("create %s: %w", path, err)
		}
		writer = file
		closeFns = append(closeFns, file.Close)
	}
	if gzipEnabled {
		gz := gzip.NewWriter(writer)
		writer = gz
		closeFns = append([]func() error{gz.Close}, closeFns...)
	}
	return writer, closeAll(closeFns), nil
}

func closeAll(closers []func() error) func() error {
	return func() error {
		var first error
		for _, closer := range closers {
			if err := closer(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
}
