package locator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// PathSpec resolves to at most one node inside a scope.
// An empty or nil selection means the candidate did not match.
type PathSpec interface {
	Resolve(scope *goquery.Selection) *goquery.Selection
}

// Step addresses the Index-th child element (1-based) with the given tag
type Step struct {
	Tag   string
	Index int
}

// Structural walks element children from the scope, one Step at a time
type Structural struct {
	Steps []Step
}

// Resolve implements PathSpec
func (p Structural) Resolve(scope *goquery.Selection) *goquery.Selection {
	if scope == nil || len(p.Steps) == 0 {
		return nil
	}
	cur := scope.First()
	for _, step := range p.Steps {
		cur = cur.ChildrenFiltered(step.Tag).Eq(step.Index - 1)
		if cur.Length() == 0 {
			return nil
		}
	}
	return cur
}

// String renders the path in the same form ParsePath accepts
func (p Structural) String() string {
	parts := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		parts[i] = fmt.Sprintf("%s[%d]", s.Tag, s.Index)
	}
	return strings.Join(parts, "/")
}

// ParsePath parses "html/body/main/div[1]/p" into steps. A step without an index means [1].
func ParsePath(expr string) (Structural, error) {
	var steps []Step
	for _, raw := range strings.Split(strings.Trim(expr, "/"), "/") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return Structural{}, fmt.Errorf("empty step in path %q", expr)
		}
		tag, index := raw, 1
		if open := strings.IndexByte(raw, '['); open >= 0 {
			if !strings.HasSuffix(raw, "]") {
				return Structural{}, fmt.Errorf("unterminated index in step %q", raw)
			}
			n, err := strconv.Atoi(raw[open+1 : len(raw)-1])
			if err != nil || n < 1 {
				return Structural{}, fmt.Errorf("invalid index in step %q", raw)
			}
			tag, index = raw[:open], n
		}
		if tag == "" {
			return Structural{}, fmt.Errorf("missing tag in step %q", raw)
		}
		steps = append(steps, Step{Tag: strings.ToLower(tag), Index: index})
	}
	return Structural{Steps: steps}, nil
}

// Path is like ParsePath but panics on malformed input. Used for static layouts.
func Path(expr string) Structural {
	p, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Label finds a Tag node whose own text equals Text, then its next SiblingTag sibling
type Label struct {
	Tag        string
	Text       string
	SiblingTag string
}

// Resolve implements PathSpec
func (l Label) Resolve(scope *goquery.Selection) *goquery.Selection {
	if scope == nil {
		return nil
	}
	anchor := scope.Find(l.Tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return ownText(s.Get(0)) == l.Text
	}).First()
	if anchor.Length() == 0 {
		return nil
	}
	return anchor.NextAllFiltered(l.SiblingTag).First()
}

// ownText joins the node's direct text children, trimmed
func ownText(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return strings.TrimSpace(sb.String())
}

// Selector takes the first match of a CSS selector in scope
type Selector struct {
	CSS string
}

// Resolve implements PathSpec
func (s Selector) Resolve(scope *goquery.Selection) *goquery.Selection {
	if scope == nil {
		return nil
	}
	return scope.Find(s.CSS).First()
}

// Locator names a field and the ordered candidates that may hold it
type Locator struct {
	Field      string
	Attr       string // read this attribute instead of the node text
	Candidates []PathSpec
}

// Value returns the first non-empty trimmed value among the candidates, or ""
func (l Locator) Value(scope *goquery.Selection) string {
	for _, candidate := range l.Candidates {
		node := candidate.Resolve(scope)
		if node == nil || node.Length() == 0 {
			continue
		}
		var value string
		if l.Attr != "" {
			value, _ = node.Attr(l.Attr)
		} else {
			value = node.Text()
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}

// Set is a group of locators extracted together
type Set []Locator

// Fields returns the field names in declared order
func (s Set) Fields() []string {
	fields := make([]string, len(s))
	for i, l := range s {
		fields[i] = l.Field
	}
	return fields
}
