package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/folio/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestTypeTag(t *testing.T) {
	convey.Convey("Given the known type tags", t, func() {
		convey.So(model.Tags(), convey.ShouldResemble, []model.TypeTag{"experiences", "skills", "works"})
		for _, tag := range model.Tags() {
			convey.So(tag.Valid(), convey.ShouldBeTrue)
		}
		convey.So(model.TypeTag("posts").Valid(), convey.ShouldBeFalse)
		convey.So(model.TagWorks.String(), convey.ShouldEqual, "works")
	})
}

func TestWorkDecoding(t *testing.T) {
	convey.Convey("Given a works document as returned by the content backend", t, func() {
		raw := `{
			"_id": "w1",
			"_type": "works",
			"title": "Folio",
			"description": "A portfolio server",
			"tags": ["go", {"name": "htmx", "color": "orange-text-gradient"}],
			"imgUrl": {"_type": "image", "asset": {"_ref": "image-abc-800x600-png", "_type": "reference"}},
			"projectLink": "https://example.com/folio"
		}`

		var w model.Work
		err := json.Unmarshal([]byte(raw), &w)

		convey.Convey("Then every field is decoded", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(w.ID, convey.ShouldEqual, "w1")
			convey.So(w.Title, convey.ShouldEqual, "Folio")
			convey.So(w.Image.Ref, convey.ShouldEqual, "image-abc-800x600-png")
			convey.So(w.ProjectLink, convey.ShouldEqual, "https://example.com/folio")
			convey.So(w.Tags, convey.ShouldResemble, []model.Tag{{Name: "go"}, {Name: "htmx", Color: "orange-text-gradient"}})
		})

		convey.Convey("Then missing tag colors come from the palette by position", func() {
			tags := w.ColoredTags()
			convey.So(tags[0].Color, convey.ShouldEqual, model.TagPalette[0])
			convey.So(tags[1].Color, convey.ShouldEqual, "orange-text-gradient")
			convey.So(w.Tags[0].Color, convey.ShouldEqual, "")
		})
	})
}

func TestImageRef(t *testing.T) {
	convey.Convey("Given image references in different shapes", t, func() {
		cases := map[string]model.ImageRef{
			`{"asset":{"_ref":"image-x-1x1-jpg"}}`:  {Ref: "image-x-1x1-jpg"},
			`{"asset":{"url":"https://cdn/x.jpg"}}`: {URL: "https://cdn/x.jpg"},
			`"image-y-2x2-webp"`:                    {Ref: "image-y-2x2-webp"},
			`"https://img.example.com/logo.svg"`:    {URL: "https://img.example.com/logo.svg"},
			`null`:                                  {},
			`{"_type":"image"}`:                     {},
		}
		for raw, want := range cases {
			var got model.ImageRef
			convey.So(json.Unmarshal([]byte(raw), &got), convey.ShouldBeNil)
			convey.So(got, convey.ShouldResemble, want)
		}

		convey.Convey("And a malformed reference is an error", func() {
			var got model.ImageRef
			convey.So(json.Unmarshal([]byte(`[1,2]`), &got), convey.ShouldNotBeNil)
		})

		convey.Convey("And references survive a write and read", func() {
			in := model.Skill{Name: "Go", Icon: model.ImageRef{Ref: "image-go-64x64-svg"}}
			b, err := json.Marshal(in)
			convey.So(err, convey.ShouldBeNil)
			var out model.Skill
			convey.So(json.Unmarshal(b, &out), convey.ShouldBeNil)
			convey.So(out, convey.ShouldResemble, in)
		})
	})
}

func TestExperienceDecoding(t *testing.T) {
	convey.Convey("Given an experience with two works", t, func() {
		raw := `{"date":"2021 - 2023","works":[
			{"name":"Engineer","company":"Acme","companyImgUrl":{"asset":{"_ref":"image-acme-10x10-png"}},"bgColor":"#fff","desc":"Built things"},
			{"name":"Intern","company":"Acme"}]}`
		var e model.Experience
		convey.So(json.Unmarshal([]byte(raw), &e), convey.ShouldBeNil)
		convey.So(e.Date, convey.ShouldEqual, "2021 - 2023")
		convey.So(len(e.Works), convey.ShouldEqual, 2)
		convey.So(e.Works[0].CompanyImage.Ref, convey.ShouldEqual, "image-acme-10x10-png")
		convey.So(e.Works[0].BgColor, convey.ShouldEqual, "#fff")
	})
}
