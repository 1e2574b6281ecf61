package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/folio/internal/adapters/repository"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/pkg/logger"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load portfolio documents into the SQLite store",
	Long: `Reads a YAML or JSON file of documents and stores them in the SQLite
database at sqlite_path. The file is either a list of documents carrying
_type, or a mapping from type (experiences, skills, works) to a list.

Every document is checked against the JSON schema of its type first.
By default every type present in the file replaces what is stored for it.
With --merge, documents are upserted by _id instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	importDB    string
	importMerge bool
)

func init() {
	importCmd.Flags().StringVar(&importDB, "db", "", "SQLite database path (overrides sqlite_path)")
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "upsert by id instead of replacing each type")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := cfg.SQLitePath
	if importDB != "" {
		path = importDB
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer func() { _ = f.Close() }()

	docs, err := repository.ReadDocuments(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	var invalid []error
	for _, list := range docs {
		for _, d := range list {
			if err := repository.CheckSchema(d); err != nil {
				invalid = append(invalid, err)
			}
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("%s: %w", args[0], errors.Join(invalid...))
	}

	store, err := repository.Open(ctx, path, repository.WithMetricsUpdateInterval(0))
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close store", logger.Error(err))
		}
	}()

	out := cmd.OutOrStdout()
	for _, tag := range model.Tags() {
		list, ok := docs[tag]
		if !ok {
			continue
		}
		if importMerge {
			err = store.Put(ctx, list...)
		} else {
			err = store.Replace(ctx, tag, list...)
		}
		if err != nil {
			return fmt.Errorf("failed to store %s: %w", tag, err)
		}
		n, err := store.Count(ctx, tag)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-12s %d imported, %d stored\n", tag, len(list), n)
	}
	logger.Get().Info(ctx, "import finished", logger.String("db", path), logger.String("file", args[0]))
	return nil
}
