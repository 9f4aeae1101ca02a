// Package synth builds placeholder artifact sets when extraction over a
// whole pipeline run recovers nothing. A degraded run must still hand the
// caller something inspectable, so the synthesizer is guaranteed to
// return a non-empty map.
package synth

import (
	"fmt"
	"strings"

	"github.com/kayz/codeloom/internal/artifact"
)

// RoleText pairs a role label with the raw text that role produced.
type RoleText struct {
	Label string
	Text  string
}

// ScaffoldFile is one fixed placeholder entry. Path and Content may
// contain the "{project}" placeholder, substituted at synthesis time.
type ScaffoldFile struct {
	Path    string `yaml:"path"`
	Content string `yaml:"content"`
}

// Scaffold describes the flavor-specific placeholder set. CombinedPath
// names the entry that collects every role's raw output; Files carries
// the fixed scaffold (a README and a manifest at minimum), declared in
// the catalog rather than here.
type Scaffold struct {
	CombinedPath string         `yaml:"combined_path"`
	CommentLead  string         `yaml:"comment_lead"`
	Files        []ScaffoldFile `yaml:"files"`
}

// Synthesize builds the placeholder map for a failed or empty run. The
// combined entry concatenates every role's raw text under a header naming
// the role, so nothing the generator produced is lost.
func Synthesize(roleTexts []RoleText, projectName string, scaffold Scaffold) *artifact.Map {
	result := artifact.NewMap()

	lead := scaffold.CommentLead
	if lead == "" {
		lead = "#"
	}

	var combined strings.Builder
	for _, rt := range roleTexts {
		fmt.Fprintf(&combined, "%s Generated by %s\n%s\n\n", lead, rt.Label, rt.Text)
	}

	combinedPath := scaffold.CombinedPath
	if combinedPath == "" {
		combinedPath = "{project}/generated_content.txt"
	}
	result.Set(expand(combinedPath, projectName), combined.String())

	for _, f := range scaffold.Files {
		result.Set(expand(f.Path, projectName), expand(f.Content, projectName))
	}

	return result
}

func expand(s, projectName string) string {
	return strings.ReplaceAll(s, "{project}", projectName)
}
