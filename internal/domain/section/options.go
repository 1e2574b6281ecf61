package section

import (
	"github.com/okian/folio/internal/domain/excerpt"
	"github.com/okian/folio/internal/domain/paging"
)

// WorksOption configures a Works section.
type WorksOption func(*worksConfig)

type worksConfig struct {
	perPage        int
	descriptionMax int
	keyMode        excerpt.KeyMode
}

func defaultWorksConfig() worksConfig {
	return worksConfig{
		perPage:        paging.DefaultPerPage,
		descriptionMax: excerpt.DefaultMaxLength,
		keyMode:        excerpt.KeyBySlot,
	}
}

// WithPerPage sets the number of cards per page.
func WithPerPage(n int) WorksOption {
	return func(c *worksConfig) {
		if n > 0 {
			c.perPage = n
		}
	}
}

// WithDescriptionMax sets the rune count after which descriptions are cut.
func WithDescriptionMax(n int) WorksOption {
	return func(c *worksConfig) {
		if n > 0 {
			c.descriptionMax = n
		}
	}
}

// WithKeyMode selects what expansion flags are attached to.
func WithKeyMode(m excerpt.KeyMode) WorksOption {
	return func(c *worksConfig) {
		if m == excerpt.KeyBySlot || m == excerpt.KeyByItem {
			c.keyMode = m
		}
	}
}
