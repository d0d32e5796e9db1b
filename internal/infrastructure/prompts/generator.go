package prompts

import (
	"bytes"
	"text/template"

	"browser-use-gologin/internal/application/port/output"
)

type ToolInfo struct {
	Name        string
	Description string
}

type SystemPromptData struct {
	Tools             []ToolInfo
	MaxActionsPerStep int
}

// GenerateSystemPrompt renders baseTemplate with the registered tools in registration order.
func GenerateSystemPrompt(baseTemplate string, tools output.ToolRegistry, maxActionsPerStep int) (string, error) {
	all := tools.All()
	infos := make([]ToolInfo, 0, len(all))
	for _, tool := range all {
		infos = append(infos, ToolInfo{
			Name:        tool.Name().String(),
			Description: tool.Description(),
		})
	}

	data := SystemPromptData{
		Tools:             infos,
		MaxActionsPerStep: maxActionsPerStep,
	}

	tmpl, err := template.New("system").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
