package prompts

import (
	"bytes"
	"strings"
	"text/template"
	"time"
)

// DateLayout renders e.g. "Friday, March 07, 2025".
const DateLayout = "Monday, January 02, 2006"

type ResearchPromptData struct {
	Method  string
	Date    string
	Query   string
	Content string
}

func NewResearchPromptData(method, query, content string, now time.Time) ResearchPromptData {
	return ResearchPromptData{
		Method:  method,
		Date:    now.Format(DateLayout),
		Query:   query,
		Content: content,
	}
}

func GenerateResearchPrompt(baseTemplate string, data ResearchPromptData) (string, error) {
	tmpl, err := template.New("research").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}
