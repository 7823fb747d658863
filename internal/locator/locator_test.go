package locator

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const detailHTML = `<!DOCTYPE html>
<html><body>
<main>
	<div>
		<div><img src="https://cdn.example.com/gin-a.png"></div>
		<div>
			<div>a</div><div>b</div><div>c</div>
			<div>
				<div><span>Type:</span><span>London Dry</span></div>
				<div><p><span>Botanicals</span><span>   </span></p></div>
			</div>
			<div>
				<div>label</div>
				<div><p><span>Botanicals</span><span>Juniper, Coriander</span></p></div>
			</div>
			<div><p><span>Description</span><span>  A crisp gin.  </span></p></div>
		</div>
	</div>
</main>
</body></html>`

func mustDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

// spyPath records how many times it was resolved
type spyPath struct {
	inner PathSpec
	calls int
}

func (s *spyPath) Resolve(scope *goquery.Selection) *goquery.Selection {
	s.calls++
	return s.inner.Resolve(scope)
}

func TestParsePath(t *testing.T) {
	p, err := ParsePath("/html/body/main/div[1]/DIV[2]/img")
	require.NoError(t, err)
	assert.Equal(t, []Step{
		{"html", 1}, {"body", 1}, {"main", 1}, {"div", 1}, {"div", 2}, {"img", 1},
	}, p.Steps)
	assert.Equal(t, "html[1]/body[1]/main[1]/div[1]/div[2]/img[1]", p.String())

	for _, bad := range []string{"", "div[0]", "div[x]", "div[2", "[3]", "a//b"} {
		_, err := ParsePath(bad)
		assert.Error(t, err, bad)
	}

	assert.Panics(t, func() { Path("div[") })
}

func TestStructuralResolve(t *testing.T) {
	doc := mustDoc(t, detailHTML)

	node := Path("html/body/main/div[1]/div[2]/div[6]/p/span[2]").Resolve(doc.Selection)
	require.NotNil(t, node)
	assert.Equal(t, "A crisp gin.", strings.TrimSpace(node.Text()))

	// a step past the last child at that occurrence fails the whole candidate
	assert.Nil(t, Path("html/body/main/div[1]/div[2]/div[9]/p").Resolve(doc.Selection))
	assert.Nil(t, Path("html/body/main/section").Resolve(doc.Selection))
}

func TestLabelResolve(t *testing.T) {
	doc := mustDoc(t, detailHTML)

	node := Label{Tag: "span", Text: "Type:", SiblingTag: "span"}.Resolve(doc.Selection)
	require.NotNil(t, node)
	assert.Equal(t, "London Dry", node.Text())

	// label text must match exactly
	node = Label{Tag: "span", Text: "Type", SiblingTag: "span"}.Resolve(doc.Selection)
	assert.Nil(t, node)
}

func TestLocatorFallsBackInOrder(t *testing.T) {
	doc := mustDoc(t, detailHTML)

	botanicals := Locator{
		Field: "botanicals",
		Candidates: []PathSpec{
			// whitespace-only text counts as empty
			Path("html/body/main/div[1]/div[2]/div[4]/div[2]/p/span[2]"),
			Path("html/body/main/div[1]/div[2]/div[5]/div[2]/p/span[2]"),
		},
	}
	assert.Equal(t, "Juniper, Coriander", botanicals.Value(doc.Selection))

	image := Locator{
		Field:      "image_url",
		Attr:       "src",
		Candidates: []PathSpec{Path("html/body/main/div[1]/div[1]/img")},
	}
	assert.Equal(t, "https://cdn.example.com/gin-a.png", image.Value(doc.Selection))

	missing := Locator{Field: "tasting_notes", Candidates: []PathSpec{Path("html/body/main/div[1]/div[2]/div[7]/p/span[2]")}}
	assert.Equal(t, "", missing.Value(doc.Selection))
}

func TestFirstHitStopsEvaluation(t *testing.T) {
	doc := mustDoc(t, detailHTML)

	first := &spyPath{inner: Label{Tag: "span", Text: "Type:", SiblingTag: "span"}}
	second := &spyPath{inner: Path("html/body/main/div[1]/div[2]/div[4]/div[1]/span[2]")}

	loc := Locator{Field: "type", Candidates: []PathSpec{first, second}}
	assert.Equal(t, "London Dry", loc.Value(doc.Selection))
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)

	miss := &spyPath{inner: Selector{CSS: "span.nothing"}}
	hit := &spyPath{inner: Selector{CSS: "img"}}
	loc = Locator{Field: "image", Attr: "src", Candidates: []PathSpec{miss, hit}}
	assert.Equal(t, "https://cdn.example.com/gin-a.png", loc.Value(doc.Selection))
	assert.Equal(t, 1, miss.calls)
	assert.Equal(t, 1, hit.calls)
}

func TestExtract(t *testing.T) {
	doc := mustDoc(t, detailHTML)
	set := Set{
		{Field: "type", Candidates: []PathSpec{Label{Tag: "span", Text: "Type:", SiblingTag: "span"}}},
		{Field: "description", Candidates: []PathSpec{Path("html/body/main/div[1]/div[2]/div[6]/p/span[2]")}},
		{Field: "tasting_notes", Candidates: []PathSpec{Path("html/body/main/div[1]/div[2]/div[7]/p/span[2]")}},
	}
	assert.Equal(t, []string{"type", "description", "tasting_notes"}, set.Fields())

	values, err := Extract(doc.Selection, set)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"type":          "London Dry",
		"description":   "A crisp gin.",
		"tasting_notes": "",
	}, values)

	// same document, same output
	again, err := Extract(doc.Selection, set)
	require.NoError(t, err)
	assert.Equal(t, values, again)

	_, err = Extract(nil, set)
	assert.Error(t, err)
	_, err = Extract(&goquery.Selection{}, set)
	assert.Error(t, err)
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(detailHTML))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("main").Length())
}
