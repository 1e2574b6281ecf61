package main

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/folio/internal/adapters/cms"
	"github.com/okian/folio/internal/adapters/repository"
	"github.com/okian/folio/internal/config"
	"github.com/okian/folio/internal/domain/content"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openSource builds the configured content source and the image resolver
// for its references. The closer releases the source.
func openSource(ctx context.Context, c *config.Config) (content.Source, content.ImageResolver, io.Closer, error) {
	if err := c.ValidateSource(); err != nil {
		return nil, nil, nil, err
	}
	images := cms.NewImages(c.CMS.ImageBaseURL, c.CMS.ProjectID, c.CMS.Dataset)

	switch c.ContentSource {
	case config.SourceSQLite:
		store, err := repository.Open(ctx, c.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, images, store, nil
	case config.SourceSanity:
		client, err := cms.New(
			cms.WithProjectID(c.CMS.ProjectID),
			cms.WithDataset(c.CMS.Dataset),
			cms.WithAPIVersion(c.CMS.APIVersion),
			cms.WithToken(c.CMS.Token),
			cms.WithCDN(c.CMS.UseCDN),
			cms.WithTimeout(c.CMSTimeout()),
			cms.WithBaseURL(c.CMS.BaseURL),
		)
		if err != nil {
			return nil, nil, nil, err
		}
		return client, images, nopCloser{}, nil
	default:
		return nil, nil, nil, fmt.Errorf("%w: content_source %q", config.ErrInvalidConfig, c.ContentSource)
	}
}
