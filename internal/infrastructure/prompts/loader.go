package prompts

import (
	_ "embed"
)

//go:embed research_system.txt
var ResearchSystemPrompt string

//go:embed research_user.tmpl
var ResearchUserTemplate string
