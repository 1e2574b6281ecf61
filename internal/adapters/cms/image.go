package cms

import (
	"fmt"
	"regexp"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/model"
)

// DefaultImageBase is the asset CDN host.
const DefaultImageBase = "https://cdn.sanity.io"

// image-<id>-<width>x<height>-<format>
var imageRefPattern = regexp.MustCompile(`^image-([A-Za-z0-9]+)-(\d+x\d+)-([a-z0-9]+)$`)

// Images resolves asset references to CDN URLs. It implements
// content.ImageResolver.
type Images struct {
	base      string
	projectID string
	dataset   string
}

var _ content.ImageResolver = Images{}

// NewImages returns a resolver for one project and dataset. An empty base
// uses DefaultImageBase.
func NewImages(base, projectID, dataset string) Images {
	if base == "" {
		base = DefaultImageBase
	}
	if dataset == "" {
		dataset = DefaultDataset
	}
	return Images{base: base, projectID: projectID, dataset: dataset}
}

// Images returns the resolver matching the client's project.
func (c *Client) Images() Images {
	return NewImages("", c.projectID, c.dataset)
}

// URL maps a reference to its CDN URL. Direct URLs pass through and
// malformed references resolve to "".
func (im Images) URL(ref model.ImageRef) string {
	if ref.URL != "" {
		return ref.URL
	}
	m := imageRefPattern.FindStringSubmatch(ref.Ref)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("%s/images/%s/%s/%s-%s.%s", im.base, im.projectID, im.dataset, m[1], m[2], m[3])
}
