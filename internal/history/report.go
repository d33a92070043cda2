package history

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Report is the shareable summary of a routed-and-uploaded episode, meant
// for pasting into a chat or an issue when something went wrong.
type Report struct {
	Source    string   `json:"source"`
	Target    string   `json:"target,omitempty"`
	Error     string   `json:"error,omitempty"`
	Failed    []string `json:"failed,omitempty"`
	Cancelled bool     `json:"cancelled,omitempty"`
}

// MarshalText renders the report as indented JSON.
func (r Report) MarshalText() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Render produces a human-readable version of the report.
func (r Report) Render() string {
	var sb strings.Builder

	target := r.Target
	if target == "" {
		target = "…"
	}
	fmt.Fprintf(&sb, "%s → %s\n", r.Source, target)

	if r.Cancelled {
		sb.WriteString("cancelled by user\n")
	}
	if r.Error != "" {
		fmt.Fprintf(&sb, "error: %s\n", r.Error)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(&sb, "failed: %s\n", f)
	}

	return sb.String()
}
