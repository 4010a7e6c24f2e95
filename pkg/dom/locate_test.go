package dom

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const portfolioHTML = `<!DOCTYPE html>
<html>
<head><title>Portfolio</title><style>.x{}</style></head>
<body>
  <nav><a href="/">Home</a><a href="#desktop">Projects</a></nav>
  <main>
    <section id="about">
      <h1>Nitin Jangid</h1>
      <p>Full Stack Developer building <strong>AI products</strong>.</p>
    </section>
    <section id="desktop">
      <h2>My Projects</h2>
      <div class="project-card">
        <h3>MockMate - AI Interview Platform</h3>
        <p>Practice interviews with an AI interviewer.</p>
        <button>Open MockMate</button>
      </div>
      <div class="project-card">
        <h3>Nutriguard Web App</h3>
        <p>Food safety insights.</p>
      </div>
      <div hidden><h3>Secret Project</h3></div>
    </section>
    <section id="contact">
      <h2>Contact Me</h2>
      <form>
        <input name="name" placeholder="Your Name">
        <input id="email" type="email" placeholder="Email Address">
        <textarea name="message" placeholder="Your Message"></textarea>
      </form>
    </section>
  </main>
  <script>console.log("ignored")</script>
</body>
</html>`

func parseDoc(t *testing.T, raw string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(raw))
	require.NoError(t, err)
	return doc
}

func TestExtractQueries(t *testing.T) {
	tests := []struct {
		name     string
		selector string
		expected []string
	}{
		{name: "double quoted", selector: `h2:contains("My Projects")`, expected: []string{"my projects"}},
		{name: "single quoted", selector: `[data-title='MockMate']`, expected: []string{"mockmate"}},
		{name: "multiple quoted", selector: `a[title="Home"], a[title="Contact"]`, expected: []string{"home", "contact"}},
		{name: "plain text", selector: "Contact Me", expected: []string{"contact me"}},
		{name: "id token", selector: "#contact-form", expected: []string{"contact form"}},
		{name: "id before class", selector: "div.project_card #nutriguard", expected: []string{"nutriguard", "project card"}},
		{name: "class only", selector: ".nonexistent", expected: []string{"nonexistent"}},
		{name: "tag only", selector: "div > span", expected: nil},
		{name: "empty", selector: "   ", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractQueries(tt.selector))
		})
	}
}

func TestStagesPreferSmallestMatch(t *testing.T) {
	doc := parseDoc(t, portfolioHTML)

	n := HeadingStage.Match(doc, "mockmate")
	require.NotNil(t, n)
	assert.Equal(t, "h3", n.Data)

	n = InlineTextStage.Match(doc, "mockmate")
	require.NotNil(t, n)
	assert.Equal(t, "button", n.Data, "the button text is shorter than any paragraph")

	n = BlockStage.Match(doc, "food safety")
	require.NotNil(t, n)
	assert.Equal(t, "div", n.Data)

	assert.Nil(t, HeadingStage.Match(doc, "secret project"), "hidden subtrees never match")
	assert.Nil(t, HeadingStage.Match(doc, "  "))
}

func TestLocatorTierOrder(t *testing.T) {
	doc := parseDoc(t, portfolioHTML)
	locator := NewLocator()
	assert.Equal(t, []string{"headings", "inline text", "block containers"}, locator.Stages())

	tests := []struct {
		name      string
		queries   []string
		wantTag   string
		wantStage string
	}{
		{name: "heading wins", queries: []string{"projects"}, wantTag: "h2", wantStage: "headings"},
		{name: "inline text", queries: []string{"ai products"}, wantTag: "strong", wantStage: "inline text"},
		{name: "later query same tier", queries: []string{"zzz", "contact me"}, wantTag: "h2", wantStage: "headings"},
		{name: "no match", queries: []string{"nonexistent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, stage := locator.Locate(doc, tt.queries)
			if tt.wantTag == "" {
				assert.Nil(t, n)
				assert.Empty(t, stage)
				return
			}
			require.NotNil(t, n)
			assert.Equal(t, tt.wantTag, n.Data)
			assert.Equal(t, tt.wantStage, stage)
		})
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()
	page, err := NewMemoryPage(portfolioHTML)
	require.NoError(t, err)
	locator := NewLocator()

	tests := []struct {
		name     string
		selector string
		wantOK   bool
		wantText string
	}{
		{name: "direct match", selector: "#contact h2", wantOK: true, wantText: "Contact Me"},
		{name: "invalid selector falls back", selector: `h3[title="Nutriguard"`, wantOK: true, wantText: "Nutriguard Web App"},
		{name: "missing selector falls back", selector: ".my-projects", wantOK: true, wantText: "My Projects"},
		{name: "nothing found", selector: ".nonexistent", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, ok, err := Resolve(ctx, page, locator, tt.selector)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Empty(t, resolved)
				return
			}
			text, found, err := page.InnerText(ctx, resolved)
			require.NoError(t, err)
			require.True(t, found, "resolved selector %q must match", resolved)
			assert.Equal(t, tt.wantText, text)
		})
	}

	assert.Zero(t, page.SideEffects(), "resolution must not touch the page")
}
