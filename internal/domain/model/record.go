// Package model contains the content records rendered by the portfolio sections.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TypeTag selects which record kind the content store returns.
type TypeTag string

// Known type tags.
const (
	TagExperiences TypeTag = "experiences"
	TagSkills      TypeTag = "skills"
	TagWorks       TypeTag = "works"
)

// Tags lists every known type tag in section order.
func Tags() []TypeTag {
	return []TypeTag{TagExperiences, TagSkills, TagWorks}
}

// Valid reports whether t is a known tag.
func (t TypeTag) Valid() bool {
	switch t {
	case TagExperiences, TagSkills, TagWorks:
		return true
	}
	return false
}

func (t TypeTag) String() string { return string(t) }

// ImageRef is an opaque image reference as stored by the content backend.
// Either Ref (an asset reference id) or URL (an already resolved asset) is set.
type ImageRef struct {
	Ref string
	URL string
}

// IsZero reports whether the reference points at nothing.
func (r ImageRef) IsZero() bool { return r.Ref == "" && r.URL == "" }

type imageAsset struct {
	Ref string `json:"_ref,omitempty"`
	URL string `json:"url,omitempty"`
}

type imageDoc struct {
	Type  string      `json:"_type,omitempty"`
	Asset *imageAsset `json:"asset,omitempty"`
}

// UnmarshalJSON accepts {"asset":{"_ref":...}}, {"asset":{"url":...}} or a
// bare string, which is treated as a reference when it looks like one and as
// a URL otherwise.
func (r *ImageRef) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = ImageRef{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if strings.HasPrefix(s, "image-") {
			*r = ImageRef{Ref: s}
		} else {
			*r = ImageRef{URL: s}
		}
		return nil
	}
	var doc imageDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("image reference: %w", err)
	}
	*r = ImageRef{}
	if doc.Asset != nil {
		r.Ref = doc.Asset.Ref
		r.URL = doc.Asset.URL
	}
	return nil
}

// MarshalJSON writes the backend document shape.
func (r ImageRef) MarshalJSON() ([]byte, error) {
	if r.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(imageDoc{Type: "image", Asset: &imageAsset{Ref: r.Ref, URL: r.URL}})
}

// Experience is one timeline record. Only the first work entry is rendered.
type Experience struct {
	ID    string           `json:"_id,omitempty"`
	Date  string           `json:"date"`
	Works []ExperienceWork `json:"works"`
}

// ExperienceWork is a role held at a company.
type ExperienceWork struct {
	Name         string   `json:"name"`
	Company      string   `json:"company"`
	CompanyImage ImageRef `json:"companyImgUrl"`
	BgColor      string   `json:"bgColor"`
	Desc         string   `json:"desc"`
}

// Skill is one technology icon.
type Skill struct {
	ID   string   `json:"_id,omitempty"`
	Name string   `json:"name"`
	Icon ImageRef `json:"icon"`
}

// Work is one project card.
type Work struct {
	ID          string   `json:"_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []Tag    `json:"tags"`
	Image       ImageRef `json:"imgUrl"`
	ProjectLink string   `json:"projectLink"`
}

// Tag is a project label with its display color.
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// UnmarshalJSON accepts a bare string or {"name","color"}.
func (t *Tag) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Tag{Name: s}
		return nil
	}
	type plain Tag
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("tag: %w", err)
	}
	*t = Tag(p)
	return nil
}

// TagPalette holds the colors assigned to tags that carry none, by position.
var TagPalette = []string{"blue-text-gradient", "green-text-gradient", "pink-text-gradient"}

// ColoredTags returns w's tags with palette colors filled in for tags
// that have none. The receiver is not modified.
func (w Work) ColoredTags() []Tag {
	out := make([]Tag, len(w.Tags))
	for i, t := range w.Tags {
		if t.Color == "" {
			t.Color = TagPalette[i%len(TagPalette)]
		}
		out[i] = t
	}
	return out
}
