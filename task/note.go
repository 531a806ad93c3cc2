package task

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterFence = "---"

// Note is a markdown note file split into YAML frontmatter and body. Keys
// the task layer does not understand stay in Frontmatter untouched, so
// rendering a parsed note round-trips foreign metadata.
type Note struct {
	Frontmatter map[string]any
	Body        string
}

// ParseNote splits raw note content into frontmatter and body. Content
// without a frontmatter fence is all body.
func ParseNote(raw []byte) (Note, error) {
	text := string(raw)
	if !strings.HasPrefix(text, frontmatterFence+"\n") && text != frontmatterFence {
		return Note{Frontmatter: map[string]any{}, Body: text}, nil
	}

	rest := strings.TrimPrefix(text, frontmatterFence+"\n")
	head, body, found := strings.Cut(rest, "\n"+frontmatterFence)
	if !found {
		return Note{}, fmt.Errorf("unterminated frontmatter block")
	}
	body = strings.TrimPrefix(body, "\n")

	fm := map[string]any{}
	if err := yaml.Unmarshal([]byte(head), &fm); err != nil {
		return Note{}, fmt.Errorf("parsing frontmatter: %w", err)
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return Note{Frontmatter: fm, Body: body}, nil
}

// Render serializes the note back to file content.
func (n Note) Render() ([]byte, error) {
	if len(n.Frontmatter) == 0 {
		return []byte(n.Body), nil
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterFence + "\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(n.Frontmatter); err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding frontmatter: %w", err)
	}
	buf.WriteString(frontmatterFence + "\n")
	buf.WriteString(n.Body)
	return buf.Bytes(), nil
}
