// Package render builds flow-diagram sources (Graphviz DOT and Mermaid) from
// the task collection: one swimlane per workflow status, dependency edges
// between tasks, category color coding.
package render

import (
	"fmt"
	"strings"

	"priorityflow/internal/domain"
)

var lanes = []domain.Status{
	domain.StatusBacklog,
	domain.StatusWaitingInfo,
	domain.StatusInProgress,
	domain.StatusBlocked,
	domain.StatusDone,
}

const maxTitleLen = 40

// DOT renders the task set as a Graphviz digraph with one cluster per status.
func DOT(tasks []*domain.Task) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("rankdir=LR;\n")
	b.WriteString("node [fontname=Helvetica];\n")

	for _, lane := range lanes {
		fmt.Fprintf(&b, "subgraph cluster_%s {\n", laneID(lane))
		fmt.Fprintf(&b, "label=%q; style=\"rounded\"; color=\"lightgrey\";\n", string(lane))
		for _, t := range tasks {
			if t == nil || t.Status != lane {
				continue
			}
			label := fmt.Sprintf("%s\\n%s · %s  score=%d",
				escapeDOT(truncate(t.Title)), t.Category, t.PriorityLabel, int(t.PriorityScore))
			if t.DueDate != "" {
				label += "\\nDue: " + t.DueDate
			}
			fmt.Fprintf(&b, "n%d [shape=box, style=\"rounded,filled\", fillcolor=%q, label=\"%s\"];\n",
				t.ID, categoryFill(t.Category), label)
		}
		b.WriteString("}\n")
	}

	for _, t := range tasks {
		if t == nil {
			continue
		}
		for _, dep := range t.Dependencies {
			fmt.Fprintf(&b, "n%d -> n%d;\n", dep, t.ID)
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// Mermaid renders the task set as a Mermaid flowchart with subgraph swimlanes.
func Mermaid(tasks []*domain.Task) string {
	lines := []string{
		"flowchart LR",
		"classDef escuela fill:#e0f2ff,stroke:#8aa6c1,color:#1f2d3d;",
		"classDef trabajo fill:#fff7e0,stroke:#cbb86a,color:#1f2d3d;",
	}

	for _, lane := range lanes {
		lines = append(lines, fmt.Sprintf("subgraph %s[%q]", laneID(lane), string(lane)))
		for _, t := range tasks {
			if t == nil || t.Status != lane {
				continue
			}
			due := t.DueDate
			if due == "" {
				due = "-"
			}
			label := fmt.Sprintf("%s<br/>%s · %s score=%d<br/>Due: %s",
				escapeMermaid(truncate(t.Title)), t.Category, t.PriorityLabel, int(t.PriorityScore), due)
			lines = append(lines, fmt.Sprintf("n%d[\"%s\"]", t.ID, label))
			lines = append(lines, fmt.Sprintf("class n%d %s", t.ID, categoryClass(t.Category)))
		}
		lines = append(lines, "end")
	}

	for _, t := range tasks {
		if t == nil {
			continue
		}
		for _, dep := range t.Dependencies {
			lines = append(lines, fmt.Sprintf("n%d --> n%d", dep, t.ID))
		}
	}

	return strings.Join(lines, "\n")
}

func laneID(status domain.Status) string {
	return strings.ReplaceAll(string(status), " ", "_")
}

func categoryFill(c domain.Category) string {
	if c == domain.CategorySchool {
		return "#e0f2ff"
	}
	return "#fff7e0"
}

func categoryClass(c domain.Category) string {
	if c == domain.CategorySchool {
		return "escuela"
	}
	return "trabajo"
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxTitleLen {
		return s
	}
	return string(runes[:maxTitleLen])
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, `"`, "''")
	return strings.ReplaceAll(s, "\n", " ")
}

func escapeMermaid(s string) string {
	r := strings.NewReplacer(`"`, `\"`, "[", "(", "]", ")")
	return r.Replace(s)
}
