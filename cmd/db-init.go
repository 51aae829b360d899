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
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/hebcorpus/internal/adapter/repository"
	"github.com/eslsoft/hebcorpus/internal/app"
)

const (
	dbInitLexiconKey  = "db_init.lexicon"
	dbInitCacheDirKey = "db_init.cache_dir"
	dbInitNoCacheKey  = "db_init.no_cache"
)

// dbInitCmd creates the schema and optionally loads the canonical lexicon.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create the schema and import the canonical lexicon",
	Long: `Creates missing tables, then, when --lexicon is given, imports the books,
lexemes and words tables of a SQLite lexicon file into the canonical tables.
The source may be a local .db/.sqlite file, a .zip holding one, or an http(s)
URL that is downloaded once into the cache directory.
Note: go-sqlite3 requires a CGO_ENABLED=1 build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		start := time.Now()

		tools, cleanup, err := app.InitializeTools()
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()
		logger := tools.Logger

		if err := tools.Store.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
		logger.Info("schema is up to date")

		source := strings.TrimSpace(viper.GetString(dbInitLexiconKey))
		if source == "" {
			return nil
		}

		path, cleanupSource, err := resolveLexiconSource(ctx, source, viper.GetString(dbInitCacheDirKey), viper.GetBool(dbInitNoCacheKey), logger)
		if err != nil {
			return err
		}
		defer cleanupSource()

		corpus, err := readLexiconSource(ctx, path)
		if err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{
			"books":   len(corpus.Books),
			"lexemes": len(corpus.Lexemes),
			"words":   len(corpus.Words),
		}).Info("lexicon source loaded")

		stats, err := repository.NewCanonImporter(tools.Store).Import(ctx, corpus)
		if err != nil {
			return fmt.Errorf("import lexicon: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"books":    stats.Books,
			"lexemes":  stats.Lexemes,
			"verses":   stats.Verses,
			"words":    stats.Words,
			"duration": time.Since(start).String(),
		}).Info("lexicon import finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)

	dbInitCmd.Flags().String("lexicon", "", "SQLite lexicon file, zip archive or URL to import")
	dbInitCmd.Flags().String("cache-dir", "", "download cache directory (default: user cache dir/hebcorpus)")
	dbInitCmd.Flags().Bool("no-cache", false, "ignore a cached download and fetch again")

	bindFlagToViper(dbInitLexiconKey, dbInitCmd.Flags().Lookup("lexicon"))
	bindFlagToViper(dbInitCacheDirKey, dbInitCmd.Flags().Lookup("cache-dir"))
	bindFlagToViper(dbInitNoCacheKey, dbInitCmd.Flags().Lookup("no-cache"))
}
