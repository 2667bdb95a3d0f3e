package docs

import (
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	// VuePress self-closing components like <Catalog /> carry no prose.
	selfClosingRe = regexp.MustCompile(`<[A-Za-z][^>]*/>`)
	blankRunRe    = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// frontmatter is the YAML header of a docs page. Only the fields the
// knowledge base uses are decoded; everything else is ignored.
type frontmatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tag"`
}

// splitFrontmatter separates the YAML frontmatter block from the body.
// Pages without a frontmatter block return a zero frontmatter and the
// input unchanged. A malformed block is treated as body text rather than
// failing the whole file; one bad page must not abort ingestion.
func splitFrontmatter(content string) (frontmatter, string) {
	var fm frontmatter

	if !strings.HasPrefix(content, "---") {
		return fm, content
	}
	parts := strings.SplitN(content, "---", 3)
	if len(parts) < 3 {
		return fm, content
	}
	if err := yaml.Unmarshal([]byte(parts[1]), &fm); err != nil {
		return frontmatter{}, content
	}
	return fm, strings.TrimSpace(parts[2])
}

// cleanContent strips markup that carries no meaning for retrieval:
// HTML comments, VuePress components and runs of blank lines.
func cleanContent(content string) string {
	content = htmlCommentRe.ReplaceAllString(content, "")
	content = selfClosingRe.ReplaceAllString(content, "")
	content = blankRunRe.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// extractTitle prefers the frontmatter title, then the first heading,
// then falls back to "Untitled".
func extractTitle(body string, fm frontmatter) string {
	if fm.Title != "" {
		return fm.Title
	}
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return "Untitled"
}

// heading is one Markdown heading with its position in the line slice.
type heading struct {
	line  int
	level int
	text  string
}

func findHeadings(lines []string) []heading {
	var out []heading
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(trimmed, "#") {
			continue
		}
		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		// "#foo" without a space is a tag, not a heading.
		if level >= len(trimmed) || trimmed[level] != ' ' {
			continue
		}
		out = append(out, heading{
			line:  i,
			level: level,
			text:  strings.TrimSpace(trimmed[level:]),
		})
	}
	return out
}

// section is one heading-delimited span of a document, annotated with the
// heading trail that leads to it.
type section struct {
	text        string
	headingPath string
}

// splitSections chunks body on heading boundaries. Each heading opens a
// section running to the next heading of the same or higher level, so a
// subsection's text also appears inside its parent section; that overlap
// is intentional and mirrors how readers navigate the docs. Sections
// larger than 1.5x maxSize are further split with the size-bounded
// fallback. Documents without headings fall back entirely to size-based
// chunking.
func splitSections(body string, maxSize, overlap int) []section {
	lines := strings.Split(body, "\n")
	headings := findHeadings(lines)

	if len(headings) == 0 {
		var out []section
		for _, text := range splitBySize(lines, maxSize, overlap) {
			out = append(out, section{text: text})
		}
		return out
	}

	var out []section
	for i, h := range headings {
		end := len(lines)
		for _, next := range headings[i+1:] {
			if next.level <= h.level {
				end = next.line
				break
			}
		}

		trail := headingTrail(headings, i)
		content := strings.Join(lines[h.line:end], "\n")

		if len(content) > maxSize*3/2 {
			for _, part := range splitBySize(lines[h.line:end], maxSize, overlap) {
				out = append(out, section{text: part, headingPath: trail})
			}
			continue
		}
		out = append(out, section{text: content, headingPath: trail})
	}
	return out
}

// headingTrail joins the ancestor headings of headings[i] into a
// breadcrumb like "Control Flow > Loops > while".
func headingTrail(headings []heading, i int) string {
	var trail []string
	level := headings[i].level
	for j := i - 1; j >= 0; j-- {
		if headings[j].level < level {
			trail = append([]string{headings[j].text}, trail...)
			level = headings[j].level
		}
	}
	trail = append(trail, headings[i].text)
	return strings.Join(trail, " > ")
}

// splitBySize accumulates lines into chunks of at most maxSize bytes,
// carrying the trailing overlap bytes into the next chunk so a sentence
// cut at a boundary still retrieves from both sides.
func splitBySize(lines []string, maxSize, overlap int) []string {
	var (
		chunks  []string
		current []string
		size    int
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, "\n"))

		var kept []string
		keptSize := 0
		for i := len(current) - 1; i >= 0; i-- {
			lineSize := len(current[i]) + 1
			if keptSize+lineSize > overlap {
				break
			}
			kept = append([]string{current[i]}, kept...)
			keptSize += lineSize
		}
		current = kept
		size = keptSize
	}

	for _, line := range lines {
		lineSize := len(line) + 1
		if size+lineSize > maxSize && len(current) > 0 {
			flush()
		}
		current = append(current, line)
		size += lineSize
	}
	if len(current) > 0 && strings.TrimSpace(strings.Join(current, "\n")) != "" {
		chunks = append(chunks, strings.Join(current, "\n"))
	}
	return chunks
}
