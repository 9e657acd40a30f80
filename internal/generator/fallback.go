package generator

import (
	"fmt"
	"strings"
)

type section struct {
	heading string
	body    string
}

type template struct {
	keywords []string
	sections []section
}

// Order matters: the first template with a matching keyword wins.
var topicTemplates = []template{
	{
		keywords: []string{"technology", "tech", "ai"},
		sections: []section{
			{"The Current Landscape", "%s is moving quickly. New tools ship every month, and teams that track the changes early keep an edge over those that wait."},
			{"Key Innovations", "The most interesting work in %s comes from combining mature building blocks in new ways rather than from any single breakthrough."},
			{"Looking Ahead", "Expect %s to become less visible as it matures. The best technology fades into the background of everyday work."},
		},
	},
	{
		keywords: []string{"health", "fitness", "wellness"},
		sections: []section{
			{"Why It Matters", "%s affects energy, focus and mood. Small, consistent habits compound into lasting results."},
			{"Building a Routine", "Start with one change related to %s and keep it for two weeks before adding another."},
			{"Common Pitfalls", "Chasing quick wins is the fastest way to lose interest in %s. Track progress over months, not days."},
		},
	},
	{
		keywords: []string{"business", "marketing", "finance"},
		sections: []section{
			{"Market Overview", "Organizations that treat %s as a discipline rather than a side task consistently outperform their peers."},
			{"Strategies That Work", "Clear goals, measurable outcomes and short feedback loops are the foundation of effective %s."},
			{"Measuring Success", "Pick two or three metrics for %s that tie directly to revenue or retention and review them every week."},
		},
	},
}

var genericSections = []section{
	{"Understanding the Basics", "Before going deep on %s, it helps to agree on the core ideas and the vocabulary around them."},
	{"Practical Applications", "%s shows up in more places than most people expect. Looking for it in daily work is a good first step."},
}

// Fallback composes deterministic drafts locally.
type Fallback struct{}

// Compose returns the title and markdown content for topic and style.
// The output depends only on its inputs.
func (Fallback) Compose(topic, style string) (title, content string) {
	title = DefaultTitle(topic, style)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	b.WriteString("## Introduction\n\n")
	fmt.Fprintf(&b, "This post explores %s from a %s point of view: what it is, why it matters, and how to put it to work.\n\n", topic, style)

	for _, s := range sectionsFor(topic) {
		writeSection(&b, s.heading, fmt.Sprintf(s.body, topic))
	}

	switch strings.ToLower(strings.TrimSpace(style)) {
	case "technical":
		writeSection(&b, "Technical Deep Dive", fmt.Sprintf(
			"A minimal sketch of a %s pipeline:\n\n```go\nfunc process(input []string) []string {\n\tout := make([]string, 0, len(input))\n\tfor _, item := range input {\n\t\tout = append(out, strings.TrimSpace(item))\n\t}\n\treturn out\n}\n```", topic))
	case "casual":
		writeSection(&b, "A Quick Personal Note", fmt.Sprintf(
			"Honestly, I did not expect to care this much about %s. Once you try it for a week, it is hard to go back.", topic))
	case "persuasive":
		writeSection(&b, "Why You Should Act Now", fmt.Sprintf(
			"Every week you wait on %s is a week someone else gets ahead. Start today, even if the first step is small.", topic))
	case "professional":
		writeSection(&b, "Key Takeaways", fmt.Sprintf(
			"- %s rewards a deliberate, measured approach.\n- Define success up front and revisit it regularly.\n- Share what you learn with your team.", topic))
	}

	writeSection(&b, "Conclusion", fmt.Sprintf(
		"%s is worth the attention. Pick one idea from this post and try it this week.", topic))

	draft := strings.TrimSpace(b.String())
	_, content = ParseCompletion(draft, topic, style)
	return title, content
}

func writeSection(b *strings.Builder, heading, body string) {
	fmt.Fprintf(b, "## %s\n\n%s\n\n", heading, body)
}

func sectionsFor(topic string) []section {
	words := strings.FieldsFunc(strings.ToLower(topic), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	for _, tpl := range topicTemplates {
		for _, kw := range tpl.keywords {
			for _, w := range words {
				if w == kw {
					return tpl.sections
				}
			}
		}
	}
	return genericSections
}
