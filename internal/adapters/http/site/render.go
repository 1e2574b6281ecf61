package site

import (
	"html/template"
	"regexp"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/okian/folio/internal/domain/content"
	"github.com/okian/folio/internal/domain/section"
	"github.com/okian/folio/internal/domain/view"
)

// Page copy.
const (
	ExperienceSub   = "What I have done so far"
	ExperienceTitle = "Work Experience."
	WorksSub        = "My work"
	WorksTitle      = "Projects."
	WorksIntro      = "Following projects showcases my skills and experience through " +
		"real-world examples of my work. Each project is briefly described with " +
		"links to code repositories and live demos in it. It reflects my ability " +
		"to solve complex problems, work with different technologies, and manage " +
		"projects effectively."
)

const summaryKey = "Showing %d–%d of %d projects"

var printer *message.Printer

func init() {
	_ = message.Set(language.English, summaryKey,
		plural.Selectf(3, "%d",
			"=1", "Showing %[1]d–%[2]d of %[3]d project",
			"other", "Showing %[1]d–%[2]d of %[3]d projects",
		))
	printer = message.NewPrinter(language.English)
}

// Summary returns the "Showing a–b of n projects" line of a page, or "" for
// an empty list. Counts are formatted for English readers.
func Summary(p section.Page) string {
	if p.Count == 0 {
		return ""
	}
	return printer.Sprintf(summaryKey, p.First, p.Last, p.Count)
}

type sectionState struct {
	Pending bool
	Failed  bool
	Error   string
}

var colorPattern = regexp.MustCompile(`^(#[0-9A-Fa-f]{3,8}|[a-zA-Z]+|(rgb|rgba|hsl|hsla)\([0-9., %]+\))$`)

// safeColor drops record colors that are not a plain CSS color.
func safeColor(c string) string {
	if !colorPattern.MatchString(c) {
		return ""
	}
	return c
}

// css marks a style built from effect parameters as safe.
func css(s string) template.CSS {
	return template.CSS(s) //nolint:gosec // effect parameters and sanitized colors only
}

func stateOf(l section.Loader) sectionState {
	st, ferr := l.Status()
	s := sectionState{
		Pending: st == content.StatusPending,
		Failed:  st == content.StatusFailed,
	}
	if ferr != nil {
		s.Error = ferr.KindName()
	}
	return s
}

type entryData struct {
	section.Entry
	Image        string
	IconStyle    template.CSS
	ContentStyle template.CSS
	ArrowStyle   template.CSS
}

type experienceData struct {
	sectionState
	Entries []entryData
}

type iconData struct {
	Name string
	Icon string
}

type techData struct {
	sectionState
	Icons []iconData
}

type cardData struct {
	section.Card
	Image string
	Style template.CSS
}

type worksData struct {
	sectionState
	Page    section.Page
	Cards   []cardData
	Summary string
}

type pageData struct {
	ExperienceSub   string
	ExperienceTitle string
	WorksSub        string
	WorksTitle      string
	WorksIntro      string

	HeadingStyle template.CSS
	IntroStyle   template.CSS
	Tilt         map[string]string

	Experience experienceData
	Tech       techData
	Works      worksData
}

func (h *Handler) page(v *view.View) pageData {
	images := h.deps.Images()
	fx := h.effects

	exp := experienceData{sectionState: stateOf(v.Experience)}
	for _, e := range v.Experience.Entries() {
		exp.Entries = append(exp.Entries, entryData{
			Entry:        e,
			Image:        images.URL(e.Work.CompanyImage),
			IconStyle:    css(fx.Timeline.IconStyle(safeColor(e.Work.BgColor))),
			ContentStyle: css(fx.Timeline.ContentStyle()),
			ArrowStyle:   css(fx.Timeline.ArrowStyle()),
		})
	}

	tech := techData{sectionState: stateOf(v.Tech)}
	for _, s := range v.Tech.Icons() {
		tech.Icons = append(tech.Icons, iconData{Name: s.Name, Icon: images.URL(s.Icon)})
	}

	p := v.Works.Page()
	works := worksData{sectionState: stateOf(v.Works), Page: p, Summary: Summary(p)}
	for i, c := range p.Cards {
		works.Cards = append(works.Cards, cardData{
			Card:  c,
			Image: images.URL(c.Work.Image),
			Style: css(fx.Card.CardFadeIn(i).Style()),
		})
	}

	return pageData{
		ExperienceSub:   ExperienceSub,
		ExperienceTitle: ExperienceTitle,
		WorksSub:        WorksSub,
		WorksTitle:      WorksTitle,
		WorksIntro:      WorksIntro,
		HeadingStyle:    css(fx.Heading.Style()),
		IntroStyle:      css(fx.Intro.Style()),
		Tilt:            fx.Tilt.Attrs(),
		Experience:      exp,
		Tech:            tech,
		Works:           works,
	}
}
