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

	"github.com/spf13/cobra"

	"github.com/eslsoft/hebcorpus/internal/adapter/mapping"
	"github.com/eslsoft/hebcorpus/internal/app"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Manage custom books",
}

var bookAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a custom book",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		req := mapping.CreateBookRequest{}
		req.Slug, _ = flags.GetString("slug")
		req.Title, _ = flags.GetString("title")
		req.Description, _ = flags.GetString("description")
		req.Source, _ = flags.GetString("source")
		if linked, _ := flags.GetInt64("linked-book"); linked > 0 {
			req.LinkedHebrewBookID = &linked
		}

		tools, cleanup, err := app.InitializeTools()
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()

		book, err := tools.Books.CreateBook(cmd.Context(), req.ToEntity())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), book)
	},
}

func init() {
	rootCmd.AddCommand(bookCmd)
	bookCmd.AddCommand(bookAddCmd)

	bookAddCmd.Flags().String("slug", "", "unique lowercase slug")
	bookAddCmd.Flags().String("title", "", "display title")
	bookAddCmd.Flags().String("description", "", "optional description")
	bookAddCmd.Flags().String("source", "", "where the text comes from")
	bookAddCmd.Flags().Int64("linked-book", 0, "canonical book id used for exact-match detection")
	cobra.CheckErr(bookAddCmd.MarkFlagRequired("slug"))
	cobra.CheckErr(bookAddCmd.MarkFlagRequired("title"))
}
