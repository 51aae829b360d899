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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/hebcorpus/internal/app"
	"github.com/eslsoft/hebcorpus/internal/repository"
	"github.com/eslsoft/hebcorpus/internal/usecase"
)

const (
	auditExportOutputKey  = "audit.export.output"
	auditExportGzipKey    = "audit.export.gzip"
	auditExportFilterKey  = "audit.export.filter"
	auditExportOrderByKey = "audit.export.order_by"
	auditExportBatchKey   = "audit.export.batch_size"

	defaultAuditExportBatch = 200
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the ingestion audit trail",
}

var auditExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ingestion audits as NDJSON",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		outputPath := viper.GetString(auditExportOutputKey)
		gzipEnabled := viper.GetBool(auditExportGzipKey)
		if outputPath == "" {
			outputPath = defaultAuditExportFilename(gzipEnabled)
		}
		if !gzipEnabled && outputPath != "-" && strings.HasSuffix(strings.ToLower(outputPath), ".gz") {
			gzipEnabled = true
		}

		tools, cleanup, err := app.InitializeTools()
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()

		writer, closeFn, err := openOutput(cmd, outputPath, gzipEnabled)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := closeFn(); cerr != nil && err == nil {
				err = cerr
			}
		}()

		query := repository.FilterOrder{
			Filter:  viper.GetString(auditExportFilterKey),
			OrderBy: viper.GetString(auditExportOrderByKey),
		}
		progress := newCLIProgress(cmd.ErrOrStderr())
		n, err := exportAudits(cmd.Context(), tools.Audits, writer, query, viper.GetInt(auditExportBatchKey), progress)
		if err != nil {
			return fmt.Errorf("export audits: %w", err)
		}

		if outputPath == "-" {
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d audits to stdout\n", n)
		} else {
			cmd.Printf("exported %d audits to %s\n", n, outputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditExportCmd)

	auditExportCmd.Flags().StringP("output", "o", "", "output file, - for stdout")
	auditExportCmd.Flags().Bool("gzip", false, "gzip the output")
	auditExportCmd.Flags().String("filter", "", `CEL filter, e.g. status == "REJECTED"`)
	auditExportCmd.Flags().String("order-by", "", "ordering, e.g. created_at asc")
	auditExportCmd.Flags().Int("batch-size", 0, "rows fetched per page (default 200)")

	bindFlagToViper(auditExportOutputKey, auditExportCmd.Flags().Lookup("output"))
	bindFlagToViper(auditExportGzipKey, auditExportCmd.Flags().Lookup("gzip"))
	bindFlagToViper(auditExportFilterKey, auditExportCmd.Flags().Lookup("filter"))
	bindFlagToViper(auditExportOrderByKey, auditExportCmd.Flags().Lookup("order-by"))
	bindFlagToViper(auditExportBatchKey, auditExportCmd.Flags().Lookup("batch-size"))
}

// exportAudits pages through the audit trail and writes one JSON object per
// line. It returns the number of audits written.
func exportAudits(ctx context.Context, audits usecase.AuditUsecase, w io.Writer, query repository.FilterOrder, batchSize int, progress *cliProgress) (int, error) {
	if batchSize <= 0 {
		batchSize = defaultAuditExportBatch
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	written := 0
	for page := int32(1); ; page++ {
		items, total, err := audits.ListAudits(ctx, &repository.ListAuditQuery{
			Pagination:  repository.Pagination{PageNo: page, PageSize: int32(batchSize)},
			FilterOrder: query,
		})
		if err != nil {
			return written, err
		}
		if page == 1 {
			progress.Start(int(total))
		}
		for i := range items {
			if err := enc.Encode(&items[i]); err != nil {
				return written, err
			}
		}
		written += len(items)
		progress.Increment(len(items))
		if len(items) == 0 || int64(written) >= total {
			break
		}
	}
	progress.Finish()
	return written, nil
}

func defaultAuditExportFilename(gzipEnabled bool) string {
	ts := time.Now().UTC().Format("20060102-150405")
	filename := fmt.Sprintf("hebcorpus-audits-%s.jsonl", ts)
	if gzipEnabled {
		filename += ".gz"
	}
	return filename
}

type cliProgress struct {
	out         io.Writer
	total       int
	count       int
	lastPrinted int
	step        int
}

func newCLIProgress(out io.Writer) *cliProgress {
	return &cliProgress{out: out}
}

func (p *cliProgress) Start(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	p.count = 0
	p.lastPrinted = 0
	p.step = progressStep(total)
	fmt.Fprintf(p.out, "exporting %d audits\n", total)
}

func (p *cliProgress) Increment(delta int) {
	if delta <= 0 {
		return
	}
	p.count += delta
	if p.count == p.total || p.lastPrinted == 0 || p.count-p.lastPrinted >= p.step {
		fmt.Fprintf(p.out, "progress: %d/%d\n", p.count, p.total)
		p.lastPrinted = p.count
	}
}

func (p *cliProgress) Finish() {
	fmt.Fprintf(p.out, "done: %d/%d\n", p.count, p.total)
}

func progressStep(total int) int {
	if total <= 0 {
		return 1000
	}
	step := total / 20
	if step < 1 {
		step = 1
	}
	if step > 1000 {
		step = 1000
	}
	return step
}
