package crawler

import (
	"fmt"
	"sort"

	"sjsage522/catalogscraper/internal/locator"
	apperrors "sjsage522/catalogscraper/pkg/errors"
)

// Profile describes how one family of categories is laid out and which columns it produces
type Profile struct {
	Name    string
	Columns []string
	Summary locator.Set // resolved against each listing card
	Detail  locator.Set // resolved against the detail document; empty means no detail fetch
}

var summaryColumns = []string{ColRegion, ColCategory, ColBrand, ColName, ColSlug, ColSize, ColRating, ColPrice}

func columns(extra ...string) []string {
	return append(append([]string{}, summaryColumns...), extra...)
}

func text(field string, candidates ...locator.PathSpec) locator.Locator {
	return locator.Locator{Field: field, Candidates: candidates}
}

func attr(field, name string, candidates ...locator.PathSpec) locator.Locator {
	return locator.Locator{Field: field, Attr: name, Candidates: candidates}
}

func css(selector string) locator.Selector {
	return locator.Selector{CSS: selector}
}

var typeLabel = locator.Label{Tag: "span", Text: "Type:", SiblingTag: "span"}

// Gin-style cards carry utility classes rather than a stable structure
var classCardSummary = locator.Set{
	text(ColBrand, css(`p[class*="text-[#007CF5]"]`)),
	text(ColName, css("h3")),
	text(ColSize, css(`p[class*="text-[#9FA5A7]"]`)),
	text(ColRating, css(`p[class~="text-white"][class~="font-semibold"]`)),
	text(ColPrice, css(`p[class~="text-xs"][class~="font-semibold"]`)),
	text(ColCompound, css(`p[class~="line-clamp-1"][class~="text-left"]`)),
}

// Whisky and wine cards are read by position inside the anchor, falling back to
// the same positions anywhere below it when the card is wrapped
var positionalCardSummary = locator.Set{
	attr(ColImageURL, "src", locator.Path("div[1]/img"), css("div:nth-of-type(1) > img")),
	text(ColBrand, locator.Path("div[2]/div[1]/p[1]"), css("div:nth-of-type(2) > div:nth-of-type(1) > p:nth-of-type(1)")),
	text(ColName, locator.Path("div[2]/div[1]/h3"), css("div:nth-of-type(2) > div:nth-of-type(1) > h3")),
	text(ColSize, locator.Path("div[2]/div[1]/p[2]"), css("div:nth-of-type(2) > div:nth-of-type(1) > p:nth-of-type(2)")),
	text(ColRating, locator.Path("div[2]/div[2]/div"), css("div:nth-of-type(2) > div:nth-of-type(2) > div")),
	text(ColPrice, locator.Path("div[2]/div[2]/p"), css("div:nth-of-type(2) > div:nth-of-type(2) > p")),
}

const (
	// The detail column sits under the first or second main block depending on the page
	primaryBlock   = "html/body/main/div[1]/div[2]"
	secondaryBlock = "html/body/main/div[2]/div[2]"
)

var profiles = map[string]Profile{
	"spirits": {
		Name:    "spirits",
		Columns: columns(ColCompound, ColType, ColBotanicals, ColDescription, ColTastingNotes),
		Summary: classCardSummary,
		Detail: locator.Set{
			text(ColType, typeLabel, locator.Path(primaryBlock+"/div[5]/p/span[2]")),
			text(ColBotanicals,
				locator.Path(secondaryBlock+"/div[4]/div[2]/p/span[2]"),
				locator.Path(secondaryBlock+"/div[5]/div[2]/p/span[2]"),
				locator.Path(primaryBlock+"/div[4]/div[2]/p/span[2]"),
				locator.Path(primaryBlock+"/div[5]/div[2]/p/span[2]"),
			),
			text(ColDescription,
				locator.Path(secondaryBlock+"/div[6]/p/span[2]"),
				locator.Path(primaryBlock+"/div[6]/p/span[2]"),
			),
			text(ColTastingNotes,
				locator.Path(secondaryBlock+"/div[7]/p/span[2]"),
				locator.Path(primaryBlock+"/div[7]/p/span[2]"),
			),
		},
	},
	"detailed": {
		Name:    "detailed",
		Columns: columns(ColCompound, ColImageURL, ColType, ColBotanicals, ColDescription, ColTastingNotes),
		Summary: classCardSummary,
		Detail: locator.Set{
			attr(ColImageURL, "src", locator.Path("html/body/main/div[1]/div[1]/img")),
			text(ColType, typeLabel),
			text(ColBotanicals, locator.Path(primaryBlock+"/div[5]/div[2]/p")),
			text(ColDescription, locator.Path(primaryBlock+"/div[6]/p/span[2]")),
			text(ColTastingNotes, locator.Path(primaryBlock+"/div[7]/p/span[2]")),
		},
	},
	"whisky": {
		Name:    "whisky",
		Columns: columns(ColImageURL, ColType, ColDescription, ColTastingNotes),
		Summary: positionalCardSummary,
		Detail: locator.Set{
			text(ColType, locator.Path(primaryBlock+"/div[5]/div/p/span[2]/span"), typeLabel),
			text(ColDescription, locator.Path(primaryBlock+"/div[6]/p/span[2]")),
			text(ColTastingNotes, locator.Path(primaryBlock+"/div[7]/p/span[2]")),
		},
	},
	"wine": {
		Name:    "wine",
		Columns: columns(ColImageURL, ColType, ColDescription, ColTastingNotes),
		Summary: positionalCardSummary,
		Detail: locator.Set{
			text(ColType, locator.Path(primaryBlock+"/div[5]/p/span[2]"), typeLabel),
			text(ColDescription, locator.Path(primaryBlock+"/div[6]/p/span[2]")),
			text(ColTastingNotes, locator.Path(primaryBlock+"/div[7]/p/span[2]")),
		},
	},
	"summary": {
		Name:    "summary",
		Columns: columns(ColCompound),
		Summary: classCardSummary,
	},
}

// LookupProfile returns the named profile
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, apperrors.NewConfiguration(
			fmt.Sprintf("unknown profile %q (available: %v)", name, ProfileNames()), nil)
	}
	return p, nil
}

// ProfileNames lists the available profiles in sorted order
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
