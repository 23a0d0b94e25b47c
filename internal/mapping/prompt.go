// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mapping

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/pdiddy/workflow-mapper/pkg/types"
)

const (
	// DefaultClientName replaces a blank client/organization field.
	DefaultClientName = "Unknown Client"

	// DefaultDepartments replaces a blank department scope field.
	DefaultDepartments = "All departments"
)

// mappingPromptTmpl is sent verbatim as the only message of the
// generateContent call. The trailing spaces after "Agency" are part of the
// prompt the model has always been given.
var mappingPromptTmpl = template.Must(template.New("mapping").Parse(`You are a workflow-mapping assistant. Process these documents and create structured markdown workflows.

Client/Organization: {{.ClientName}}
Departments to cover: {{.Departments}}
Scope: Current State

Color Legend:
- Purple = Internal
- Gray = Agency  
- Green = Proposed
- Yellow = Gap
- Red = Risk

Documents to process:
{{.Documents}}

Please create a comprehensive workflow mapping following this format:
- One section per department: # [DEPARTMENT NAME] | Current State
- Workflows labeled 1A, 1B, etc. with titles
- Numbered steps with color categories [Color - Category]
- Include details as bullets: People Involved, Process, Tools, Inputs, Outputs, Challenges, Dependencies
- Mark unknowns as "Unknown"
- Use plain markdown only

Output the complete workflow mapping now.`))

// documentBlockFmt wraps one decoded document in its start and end markers.
const documentBlockFmt = "\n--- Document: %s ---\n%s\n--- End of %s ---\n        "

// DocumentsText joins the delimited document blocks with a blank line.
func DocumentsText(docs []types.DecodedDocument) string {
	blocks := make([]string, len(docs))
	for i, d := range docs {
		blocks[i] = fmt.Sprintf(documentBlockFmt, d.Name, d.Content, d.Name)
	}
	return strings.Join(blocks, "\n\n")
}

// BuildPrompt renders the mapping prompt. Blank fields fall back to
// DefaultClientName and DefaultDepartments.
func BuildPrompt(req Request, docs []types.DecodedDocument) (string, error) {
	data := struct {
		ClientName  string
		Departments string
		Documents   string
	}{
		ClientName:  req.clientName(),
		Departments: req.departments(),
		Documents:   DocumentsText(docs),
	}

	var buf bytes.Buffer
	if err := mappingPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
