package kickstarter

import (
	"context"
	"strings"

	"kickadvisor-backend/lib/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
)

// SectionNotFound marks a section that could not be located through
// any selector or heading fallback.
const SectionNotFound = "section_not_found"

type Section struct {
	Html string
	Text string
}

func (s Section) Found() bool {
	return s.Html != SectionNotFound
}

type Sections struct {
	About Section
	Risks Section
}

var aboutSelectors = []string{
	"div.full-description",
	"div.story-content",
}

var risksSelectors = []string{
	"div.js-risks",
	"#risks-and-challenges",
	"div.risks",
}

const aboutHeading = "aboutthisproject"
const risksHeading = "risksandchallenges"

// ExtractSections pulls the "About This Project" and "Risks and
// Challenges" sections out of a project page. Campaign markup is
// user-generated and drifts between page revisions, so each section
// goes through a selector list first and a fuzzy heading scan second.
// A section missing from both passes comes back as the sentinel, not
// an error: one broken section should never sink the whole page.
func ExtractSections(ctx context.Context, doc *goquery.Document) Sections {
	ctx, span := tracer.Start(ctx, "ExtractSections")
	defer span.End()

	about := sectionBySelectors(doc, aboutSelectors)
	if !about.Found() {
		about = sectionByHeading(doc, aboutHeading)
	}
	risks := sectionBySelectors(doc, risksSelectors)
	if !risks.Found() {
		risks = sectionByHeading(doc, risksHeading)
	}

	span.SetAttributes(
		attribute.Bool("about_found", about.Found()),
		attribute.Bool("risks_found", risks.Found()),
	)
	return Sections{About: about, Risks: risks}
}

func sectionBySelectors(doc *goquery.Document, selectors []string) Section {
	for _, selector := range selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		html, err := goquery.OuterHtml(sel)
		if err != nil {
			continue
		}
		return Section{
			Html: html,
			Text: textutil.CleanText(sel.Text()),
		}
	}
	return Section{Html: SectionNotFound, Text: SectionNotFound}
}

const headingMatchThreshold = 0.85

func headingMatches(heading, target string) bool {
	normalized := textutil.NormalizeName(heading)
	if normalized == "" {
		return false
	}
	if strings.Contains(normalized, target) {
		return true
	}
	return matchr.JaroWinkler(normalized, target, false) >= headingMatchThreshold
}

// sectionByHeading scans headings for one whose normalized text
// matches the target label, then collects sibling content up to the
// next heading.
func sectionByHeading(doc *goquery.Document, target string) Section {
	var out Section
	found := false

	doc.Find("h1, h2, h3, h4, h5, h6").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		if !headingMatches(heading.Text(), target) {
			return true
		}

		var html strings.Builder
		var text strings.Builder
		sibling := heading.Next()
		for sibling.Length() > 0 && !isHeading(sibling) {
			outer, err := goquery.OuterHtml(sibling)
			if err == nil {
				html.WriteString(outer)
			}
			text.WriteString(sibling.Text())
			text.WriteString(" ")
			sibling = sibling.Next()
		}

		if html.Len() == 0 {
			// heading matched but carries no content, keep scanning
			return true
		}
		out = Section{
			Html: html.String(),
			Text: textutil.CleanText(text.String()),
		}
		found = true
		return false
	})

	if !found {
		return Section{Html: SectionNotFound, Text: SectionNotFound}
	}
	return out
}

func isHeading(sel *goquery.Selection) bool {
	node := sel.Get(0)
	if node == nil {
		return false
	}
	name := strings.ToLower(node.Data)
	return len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6'
}
