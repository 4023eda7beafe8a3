package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render replaces {{variable}} placeholders in the template with values from vars.
func Render(template string, vars map[string]string) (string, error) {
	missing := findMissingVars(template, vars)
	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}

	result := variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-2] // strip {{ and }}
		if val, ok := vars[key]; ok {
			return val
		}
		return match
	})

	return result, nil
}

// Rendered holds the prompt components of one generation request after
// variable substitution.
type Rendered struct {
	System        string
	Task          string
	Supplementary string
}

// RenderComponents renders the resolved templates against one generator arg
// map. The task template always renders; system and supplementary render only
// when present.
func RenderComponents(r *Resolved, vars map[string]string) (*Rendered, error) {
	task, err := Render(r.TaskTemplate, vars)
	if err != nil {
		return nil, fmt.Errorf("render task prompt: %w", err)
	}
	out := &Rendered{Task: task}
	if r.SystemTemplate != "" {
		if out.System, err = Render(r.SystemTemplate, vars); err != nil {
			return nil, fmt.Errorf("render system prompt: %w", err)
		}
	}
	if r.SupplementaryTemplate != "" {
		if out.Supplementary, err = Render(r.SupplementaryTemplate, vars); err != nil {
			return nil, fmt.Errorf("render supplementary prompt: %w", err)
		}
	}
	return out, nil
}

// UserContent joins the task text with the supplementary override the way the
// chat request sends it.
func (r *Rendered) UserContent() string {
	if r.Supplementary == "" {
		return r.Task
	}
	return r.Task + "\n\n" + r.Supplementary
}

// ExtractVariables returns a list of variable names found in the template.
func ExtractVariables(template string) []string {
	matches := variablePattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, m := range matches {
		if len(m) > 1 && !seen[m[1]] {
			vars = append(vars, m[1])
			seen[m[1]] = true
		}
	}
	return vars
}

func findMissingVars(template string, vars map[string]string) []string {
	required := ExtractVariables(template)
	var missing []string
	for _, v := range required {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}
