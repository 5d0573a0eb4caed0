package services

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"cyberadvisor/internal/models"
)

// Model output is best-effort JSON: it arrives fenced, unfenced, wrapped in
// prose, or with trailing comments. Parsing here never fails hard; anything
// unusable degrades to a plain text result so the chat keeps working.

var (
	fencedJSONBlockRe = regexp.MustCompile("(?is)```json\\s*(.*?)\\s*```")
	fencedAnyBlockRe  = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

const analysisFallbackNote = "\n\n_Note: this reply could not be shown as a structured report._"

// ExtractQuizResult pulls an embedded quiz question out of raw model output.
// Prose before the JSON block is kept as lead-in text. If no usable question
// is found the raw text is returned unchanged as a plain result.
func ExtractQuizResult(raw string) *models.GenerationResult {
	candidate, leadIn, ok := quizCandidate(raw)
	if !ok {
		return models.PlainText(raw)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(stripJSONComments(candidate)), &payload); err != nil {
		return models.PlainText(raw)
	}

	question, ok := normalizeQuizPayload(payload)
	if !ok {
		return models.PlainText(raw)
	}
	return models.QuizResult(question, leadIn)
}

// quizCandidate locates the JSON block most likely to hold a question:
// a ```json fence first, then any fence, then the widest brace substring
// provided it mentions a question at all. The last rule keeps ordinary prose
// with braces from being eaten.
func quizCandidate(raw string) (candidate, leadIn string, ok bool) {
	if m := fencedJSONBlockRe.FindStringSubmatchIndex(raw); m != nil {
		return raw[m[2]:m[3]], strings.TrimSpace(raw[:m[0]]), true
	}
	if m := fencedAnyBlockRe.FindStringSubmatchIndex(raw); m != nil {
		return raw[m[2]:m[3]], strings.TrimSpace(raw[:m[0]]), true
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		sub := raw[start : end+1]
		if strings.Contains(strings.ToLower(sub), "question") {
			return sub, strings.TrimSpace(raw[:start]), true
		}
	}
	return "", "", false
}

// stripJSONComments removes // and /* */ comments that some model outputs
// carry, without touching slashes inside string values.
func stripJSONComments(s string) string {
	var sb strings.Builder
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			sb.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch {
		case c == '"':
			inString = true
			sb.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				sb.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			i += 2
			for i+1 < len(s) && !(s[i] == '*' && s[i+1] == '/') {
				i++
			}
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// normalizeQuizPayload maps the many shapes models emit for a question onto
// the canonical QuizQuestion. Returns false when no usable question survives.
func normalizeQuizPayload(payload map[string]interface{}) (*models.QuizQuestion, bool) {
	questionText := firstString(payload, "questionText", "question_text", "question")
	options := normalizeOptions(payload["options"])
	if strings.TrimSpace(questionText) == "" || len(options) < 2 {
		return nil, false
	}

	index := resolveCorrectIndex(payload, options)

	return &models.QuizQuestion{
		QuestionText:       questionText,
		Options:            options,
		CorrectOptionIndex: index,
		Explanation:        firstString(payload, "explanation", "rationale"),
	}, true
}

var optionLetters = []string{"A", "B", "C", "D"}

// normalizeOptions accepts an array of strings, a lettered A-D map, or any
// other string map (values in key order).
func normalizeOptions(v interface{}) []string {
	switch opts := v.(type) {
	case []interface{}:
		var out []string
		for _, o := range opts {
			if s, ok := o.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case map[string]interface{}:
		var out []string
		for _, letter := range optionLetters {
			s, ok := lookupLetter(opts, letter)
			if ok {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out
		}
		keys := make([]string, 0, len(opts))
		for k := range opts {
			keys = append(keys, k)
		}
		// Deterministic order for arbitrary keys.
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := opts[k].(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func lookupLetter(m map[string]interface{}, letter string) (string, bool) {
	for _, key := range []string{letter, strings.ToLower(letter)} {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return s, true
			}
		}
	}
	return "", false
}

// resolveCorrectIndex finds the correct option, checking the index fields
// first and then the answer aliases, which may hold an index, a letter,
// or the option text itself. Unresolvable answers default to the first option.
func resolveCorrectIndex(payload map[string]interface{}, options []string) int {
	for _, key := range []string{"correctOptionIndex", "correctAnswerIndex"} {
		if idx, ok := asInt(payload[key]); ok {
			return clampIndex(idx, len(options))
		}
	}

	for _, key := range []string{"answer", "correct_option", "correctOption", "correct_answer"} {
		v, present := payload[key]
		if !present {
			continue
		}
		if idx, ok := asInt(v); ok {
			return clampIndex(idx, len(options))
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if len(s) == 1 {
			upper := strings.ToUpper(s)
			for i, letter := range optionLetters {
				if upper == letter && i < len(options) {
					return i
				}
			}
		}
		for i, opt := range options {
			if strings.EqualFold(strings.TrimSpace(opt), s) {
				return i
			}
		}
	}
	return 0
}

func clampIndex(idx, n int) int {
	if idx < 0 || idx >= n {
		return 0
	}
	return idx
}

// ExtractAnalysisResult parses raw model output into an analysis report. The
// report is accepted when it carries at least a risk level or a score; output
// with neither degrades to plain text with a note appended.
func ExtractAnalysisResult(raw string) *models.GenerationResult {
	stripped := raw
	if m := fencedJSONBlockRe.FindStringSubmatch(raw); m != nil {
		stripped = m[1]
	} else if m := fencedAnyBlockRe.FindStringSubmatch(raw); m != nil {
		stripped = m[1]
	}

	start := strings.Index(stripped, "{")
	end := strings.LastIndex(stripped, "}")
	if start < 0 || end <= start {
		return models.PlainText(raw + analysisFallbackNote)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(stripJSONComments(stripped[start:end+1])), &payload); err != nil {
		return models.PlainText(raw + analysisFallbackNote)
	}

	_, hasRisk := payload["riskLevel"]
	_, hasScore := payload["score"]
	if !hasRisk && !hasScore {
		return models.PlainText(raw + analysisFallbackNote)
	}

	report := &models.AnalysisReport{
		RiskLevel:   normalizeRiskLevel(firstString(payload, "riskLevel")),
		Findings:    []models.AnalysisFinding{},
		ChartSlices: []models.ChartSlice{},
	}
	if score, ok := asInt(payload["score"]); ok {
		report.Score = score
	}

	if findings, ok := payload["findings"].([]interface{}); ok {
		for _, f := range findings {
			fm, ok := f.(map[string]interface{})
			if !ok {
				continue
			}
			report.Findings = append(report.Findings, models.AnalysisFinding{
				Category: firstString(fm, "category", "title"),
				Details:  firstString(fm, "details", "description"),
			})
		}
	}

	if slices, ok := payload["chartSlices"].([]interface{}); ok {
		for _, s := range slices {
			sm, ok := s.(map[string]interface{})
			if !ok {
				continue
			}
			slice := models.ChartSlice{
				Label:     firstString(sm, "label"),
				ColorHint: firstString(sm, "colorHint", "color"),
			}
			if v, ok := sm["value"].(float64); ok {
				slice.Value = v
			}
			report.ChartSlices = append(report.ChartSlices, slice)
		}
	}

	displayText := firstString(payload, "summary")
	if displayText == "" {
		displayText = strings.TrimSpace(stripped[:start])
	}
	return models.AnalysisResult(report, displayText)
}

func normalizeRiskLevel(s string) models.RiskLevel {
	for _, level := range []models.RiskLevel{
		models.RiskSafe, models.RiskLow, models.RiskMedium, models.RiskHigh, models.RiskCritical,
	} {
		if strings.EqualFold(s, string(level)) {
			return level
		}
	}
	return models.RiskLevel(s)
}

func firstString(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}
