// Package mindmap turns a model reply into a renderable mind-map tree. The
// model is asked for JSON, but replies are not trusted: parsing tries the
// structured form first and falls back to a line-oriented outline heuristic,
// so the screen always gets a tree even from a free-form answer.
package mindmap

import (
	"encoding/json"
	"strings"
)

// Node is one mind-map vertex. The zero Children slice renders as a leaf.
type Node struct {
	Title    string  `json:"title"`
	Children []*Node `json:"children,omitempty"`
}

// Parse converts a raw model reply into a mind-map tree. It never fails: an
// unusable reply yields a single root titled with the first non-empty line
// (or "Mind map" when there is none).
func Parse(raw string) *Node {
	if n := parseJSON(raw); n != nil {
		return n
	}
	return parseOutline(raw)
}

// parseJSON attempts the structured form, tolerating a surrounding markdown
// code fence. Returns nil when the reply is not usable JSON.
func parseJSON(raw string) *Node {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil
	}
	var n Node
	if err := json.Unmarshal([]byte(s), &n); err != nil || strings.TrimSpace(n.Title) == "" {
		return nil
	}
	return &n
}

// parseOutline builds a tree from indentation: two spaces (or one tab) per
// level, with common bullet markers stripped. Lines deeper than their parent
// by more than one level are clamped to the next level down. The first line
// becomes the root; when several lines share depth zero a synthetic root
// holds them.
func parseOutline(raw string) *Node {
	type entry struct {
		depth int
		title string
	}
	var entries []entry
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		depth := indentDepth(line)
		title := stripBullet(strings.TrimSpace(line))
		if title == "" {
			continue
		}
		entries = append(entries, entry{depth: depth, title: title})
	}
	if len(entries) == 0 {
		return &Node{Title: "Mind map"}
	}

	root := &Node{Title: entries[0].title}
	// stack[d] is the most recent node at depth d.
	stack := []*Node{root}
	for _, e := range entries[1:] {
		depth := e.depth
		if depth < 1 {
			depth = 1
		}
		if depth > len(stack) {
			depth = len(stack)
		}
		parent := stack[depth-1]
		n := &Node{Title: e.title}
		parent.Children = append(parent.Children, n)
		stack = append(stack[:depth], n)
	}
	return root
}

// indentDepth counts leading indentation: one tab or two spaces per level.
func indentDepth(line string) int {
	spaces, tabs := 0, 0
	for _, r := range line {
		switch r {
		case ' ':
			spaces++
		case '\t':
			tabs++
		default:
			return tabs + spaces/2
		}
	}
	return 0
}

// stripBullet drops a leading list marker ("-", "*", "•", "1.", "2)") from a
// trimmed outline line.
func stripBullet(s string) string {
	for _, prefix := range []string{"- ", "* ", "• ", "+ "} {
		if strings.HasPrefix(s, prefix) {
			return strings.TrimSpace(s[len(prefix):])
		}
	}
	// Numbered markers: digits followed by '.' or ')'.
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i < len(s) && (s[i] == '.' || s[i] == ')') {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
