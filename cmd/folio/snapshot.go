package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/folio/internal/adapters/repository"
	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/model"
	"github.com/okian/folio/pkg/logger"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch every section from the content source and summarize it",
	Long: `Queries experiences, skills and works concurrently from the configured
content source, checks that every document decodes, and prints a summary.
With --out the raw documents are written to a file that import accepts.`,
	Args: cobra.NoArgs,
	RunE: runSnapshot,
}

var snapshotOut string

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "write the fetched documents to this file")
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	src, _, closer, err := openSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open content source: %w", err)
	}
	defer func() { _ = closer.Close() }()

	raw, err := fetchAll(ctx, src)
	if err != nil {
		return err
	}

	// decode the fetched copy instead of querying again
	cached := content.SourceFunc(func(_ context.Context, tag model.TypeTag) ([]json.RawMessage, error) {
		return raw[tag], nil
	})
	decoded := map[model.TypeTag]*content.FetchError{
		model.TagExperiences: content.Fetch[model.Experience](ctx, cached, model.TagExperiences).Err,
		model.TagSkills:      content.Fetch[model.Skill](ctx, cached, model.TagSkills).Err,
		model.TagWorks:       content.Fetch[model.Work](ctx, cached, model.TagWorks).Err,
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, tag := range model.Tags() {
		status := "ok"
		if ferr := decoded[tag]; ferr != nil {
			status = ferr.Error()
			failed++
		}
		fmt.Fprintf(out, "%-12s %4d documents  %s\n", tag, len(raw[tag]), status)
	}

	if snapshotOut != "" {
		if err := writeSnapshot(snapshotOut, raw); err != nil {
			return err
		}
		logger.Get().Info(ctx, "snapshot written", logger.String("file", snapshotOut))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sections failed to decode", failed, len(model.Tags()))
	}
	return nil
}

// fetchAll queries every tag concurrently. The first failure cancels the rest.
func fetchAll(ctx context.Context, src content.Source) (map[model.TypeTag][]json.RawMessage, error) {
	var mu sync.Mutex
	raw := make(map[model.TypeTag][]json.RawMessage, len(model.Tags()))

	g, gctx := errgroup.WithContext(ctx)
	for _, tag := range model.Tags() {
		g.Go(func() error {
			docs, err := src.FetchAll(gctx, tag)
			if err != nil {
				return content.Classify(tag, err)
			}
			mu.Lock()
			raw[tag] = docs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return raw, nil
}

func writeSnapshot(path string, raw map[model.TypeTag][]json.RawMessage) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := repository.WriteDocuments(f, raw); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
