// Package services provides embedded templates for system instructions
package services

import (
	"embed"
	"strings"
	"text/template"

	"cyberadvisor/internal/models"
	contextutils "cyberadvisor/internal/utils"
)

//go:embed templates/*.tmpl
var instructionTemplatesFS embed.FS

// AITemplateManager handles loading and rendering of instruction templates
type AITemplateManager struct {
	templates *template.Template
}

// NewAITemplateManager creates a new template manager with all embedded templates loaded
func NewAITemplateManager() (*AITemplateManager, error) {
	tmpl, err := template.ParseFS(instructionTemplatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to parse instruction templates")
	}
	return &AITemplateManager{templates: tmpl}, nil
}

// instructionData is the rendering context shared by all mode templates.
type instructionData struct {
	KnowledgeLevel string
	LanguageName   string
}

// languageName maps a stored language code to the name used in instructions.
func languageName(code string) string {
	if strings.EqualFold(code, "my") {
		return "Burmese"
	}
	return "English"
}

var modeTemplates = map[models.OperatingMode]string{
	models.ModeNormal:   "normal_mode.tmpl",
	models.ModeLearning: "learning_mode.tmpl",
	models.ModeAnalysis: "analysis_mode.tmpl",
	models.ModeQuiz:     "quiz_mode.tmpl",
}

// BuildInstruction renders the system instruction for a conversation mode,
// personalized with the user's knowledge level and reply language.
func (tm *AITemplateManager) BuildInstruction(mode models.OperatingMode, user *models.User) (string, error) {
	name, ok := modeTemplates[mode]
	if !ok {
		return "", contextutils.WrapErrorf(contextutils.ErrUnknownMode, "no instruction template for mode %q", string(mode))
	}

	data := instructionData{
		KnowledgeLevel: string(models.LevelBeginner),
		LanguageName:   "English",
	}
	if user != nil {
		data.KnowledgeLevel = string(user.EffectiveKnowledgeLevel())
		data.LanguageName = languageName(user.EffectiveLanguage())
	}

	return tm.RenderTemplate(name, data)
}

// RenderTemplate renders a named template with the given data
func (tm *AITemplateManager) RenderTemplate(name string, data interface{}) (string, error) {
	var sb strings.Builder
	if err := tm.templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", contextutils.WrapErrorf(err, "failed to render template %s", name)
	}
	return sb.String(), nil
}
