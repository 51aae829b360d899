/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/hebcorpus/internal/adapter/mapping"
	"github.com/eslsoft/hebcorpus/internal/app"
	"github.com/eslsoft/hebcorpus/internal/entity"
)

const (
	ingestBookKey         = "ingest_cli.book"
	ingestChapterKey      = "ingest_cli.chapter"
	ingestFileKey         = "ingest_cli.file"
	ingestSegmentationKey = "ingest_cli.segmentation"
	ingestOverridesKey    = "ingest_cli.overrides"
	ingestDigestKey       = "ingest_cli.digest"
	ingestActorKey        = "ingest_cli.actor"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Analyze or import a chapter from a text file",
}

var ingestAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Print the analysis of a chapter without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, cleanup, err := app.InitializeTools()
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()

		req, err := loadChapterRequest(cmd, tools.Config.Ingest.MaxRawTextBytes)
		if err != nil {
			return err
		}
		if err := req.Validate(); err != nil {
			return err
		}
		analysis, err := tools.Ingest.Analyze(cmd.Context(), req.ToDraft())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), mapping.PreviewResponse{Analysis: analysis})
	},
}

var ingestCommitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Import a chapter, replacing any previous import of it",
	Long: `Imports a chapter. Without --digest the chapter is analyzed first and
the fresh digest is used, so the command always commits what it sees.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tools, cleanup, err := app.InitializeTools()
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()
		ctx := cmd.Context()

		req, err := loadChapterRequest(cmd, tools.Config.Ingest.MaxRawTextBytes)
		if err != nil {
			return err
		}
		if req.AnalysisDigest == "" {
			if err := req.Validate(); err != nil {
				return err
			}
			analysis, err := tools.Ingest.Analyze(ctx, req.ToDraft())
			if err != nil {
				return err
			}
			req.AnalysisDigest = analysis.Digest
		}

		commit, err := req.ToCommitRequest(viper.GetString(ingestActorKey))
		if err != nil {
			return err
		}
		result, err := tools.Ingest.Commit(ctx, commit)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), mapping.ToCommitResponse(result))
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.AddCommand(ingestAnalyzeCmd, ingestCommitCmd)

	flags := ingestCmd.PersistentFlags()
	flags.Int64("book", 0, "custom book id")
	flags.Int("chapter", 0, "chapter number")
	flags.StringP("file", "f", "-", "chapter text file, - for stdin, .gz is decompressed")
	flags.String("segmentation", "", "JSON file mapping verse numbers to segment lists")
	ingestCommitCmd.Flags().String("overrides", "", `JSON file mapping "verse:position" to {"source","id"}`)
	ingestCommitCmd.Flags().String("digest", "", "digest of a previous analysis to commit against")
	ingestCommitCmd.Flags().String("actor", "cli", "actor recorded in the audit trail")

	bindFlagToViper(ingestBookKey, flags.Lookup("book"))
	bindFlagToViper(ingestChapterKey, flags.Lookup("chapter"))
	bindFlagToViper(ingestFileKey, flags.Lookup("file"))
	bindFlagToViper(ingestSegmentationKey, flags.Lookup("segmentation"))
	bindFlagToViper(ingestOverridesKey, ingestCommitCmd.Flags().Lookup("overrides"))
	bindFlagToViper(ingestDigestKey, ingestCommitCmd.Flags().Lookup("digest"))
	bindFlagToViper(ingestActorKey, ingestCommitCmd.Flags().Lookup("actor"))
}

// loadChapterRequest assembles the request body the HTTP API would receive
// from the command line flags and files.
func loadChapterRequest(cmd *cobra.Command, maxRawTextBytes int) (*mapping.CommitRequest, error) {
	raw, err := readAllLimited(cmd, viper.GetString(ingestFileKey), maxRawTextBytes)
	if err != nil {
		return nil, err
	}
	req := &mapping.CommitRequest{
		PreviewRequest: mapping.PreviewRequest{
			CustomHebrewBookID: viper.GetInt64(ingestBookKey),
			ChapterNumber:      viper.GetInt(ingestChapterKey),
			RawText:            raw,
		},
		AnalysisDigest: viper.GetString(ingestDigestKey),
	}
	if path := viper.GetString(ingestSegmentationKey); path != "" {
		if err := readJSONFile(cmd, path, &req.SegmentationOverrides); err != nil {
			return nil, fmt.Errorf("read segmentation overrides: %w", err)
		}
	}
	if path := viper.GetString(ingestOverridesKey); path != "" {
		if err := readJSONFile(cmd, path, &req.Overrides); err != nil {
			return nil, fmt.Errorf("read lexeme overrides: %w", err)
		}
	}
	return req, nil
}

func readAllLimited(cmd *cobra.Command, path string, limit int) (string, error) {
	reader, closeFn, err := openInput(cmd, path)
	if err != nil {
		return "", err
	}
	defer closeFn()

	data, err := io.ReadAll(io.LimitReader(reader, int64(limit)+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > limit {
		return "", entity.ValidationError("rawText exceeds %d bytes", limit)
	}
	return string(data), nil
}

func readJSONFile(cmd *cobra.Command, path string, dst any) error {
	reader, closeFn, err := openInput(cmd, path)
	if err != nil {
		return err
	}
	defer closeFn()
	return json.NewDecoder(reader).Decode(dst)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
