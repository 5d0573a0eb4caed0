// Package models defines data structures used throughout the advisor backend.
package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// OperatingMode selects the behavioral contract for a chat turn.
type OperatingMode string

const (
	// ModeNormal is the default conversational mode
	ModeNormal OperatingMode = "normal"
	// ModeLearning produces patient, step-by-step explanations
	ModeLearning OperatingMode = "learning"
	// ModeAnalysis produces a structured security analysis report
	ModeAnalysis OperatingMode = "analysis"
	// ModeQuiz runs the quiz session state machine
	ModeQuiz OperatingMode = "quiz"
)

// ParseOperatingMode validates a mode string. The empty string maps to
// ModeNormal.
func ParseOperatingMode(s string) (OperatingMode, bool) {
	switch OperatingMode(s) {
	case ModeNormal, ModeLearning, ModeAnalysis, ModeQuiz:
		return OperatingMode(s), true
	case "":
		return ModeNormal, true
	default:
		return "", false
	}
}

// KnowledgeLevel is the user's self-reported cybersecurity skill level.
type KnowledgeLevel string

const (
	// LevelBeginner is the default knowledge level
	LevelBeginner KnowledgeLevel = "beginner"
	// LevelIntermediate indicates working familiarity with security topics
	LevelIntermediate KnowledgeLevel = "intermediate"
	// LevelAdvanced indicates professional-grade familiarity
	LevelAdvanced KnowledgeLevel = "advanced"
)

// ParseKnowledgeLevel normalizes a level string, defaulting to beginner.
func ParseKnowledgeLevel(s string) KnowledgeLevel {
	switch KnowledgeLevel(s) {
	case LevelIntermediate, LevelAdvanced:
		return KnowledgeLevel(s)
	default:
		return LevelBeginner
	}
}

// RiskLevel grades an analysis report.
type RiskLevel string

const (
	// RiskSafe indicates no meaningful risk found
	RiskSafe RiskLevel = "Safe"
	// RiskLow indicates minor findings
	RiskLow RiskLevel = "Low"
	// RiskMedium indicates findings that warrant attention
	RiskMedium RiskLevel = "Medium"
	// RiskHigh indicates serious findings
	RiskHigh RiskLevel = "High"
	// RiskCritical indicates findings requiring immediate action
	RiskCritical RiskLevel = "Critical"
)

// IsValid reports whether the risk level is one of the known grades.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskSafe, RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// ScoreConsistentWithRisk reports whether a score falls in the band the
// instruction asks the model to honor for a given risk level: Safe/Low in
// [70,100], Medium in [40,69], High/Critical in [0,39]. Extraction does not
// enforce this; callers validating model output may.
func ScoreConsistentWithRisk(level RiskLevel, score int) bool {
	switch level {
	case RiskSafe, RiskLow:
		return score >= 70 && score <= 100
	case RiskMedium:
		return score >= 40 && score <= 69
	case RiskHigh, RiskCritical:
		return score >= 0 && score <= 39
	}
	return false
}

// User represents a user in the system
type User struct {
	ID                int            `json:"id" yaml:"id"`
	Email             string         `json:"email" yaml:"email"`
	PasswordHash      sql.NullString `json:"-" yaml:"-"` // Omit from JSON responses
	KnowledgeLevel    sql.NullString `json:"knowledge_level" yaml:"knowledge_level"`
	PreferredLanguage sql.NullString `json:"preferred_language" yaml:"preferred_language"`
	LastActive        sql.NullTime   `json:"last_active" yaml:"last_active"`
	CreatedAt         time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" yaml:"updated_at"`
}

// MarshalJSON customizes JSON marshaling for User to handle sql.Null types properly
func (u User) MarshalJSON() (result0 []byte, err error) {
	return json.Marshal(&struct {
		ID                int        `json:"id"`
		Email             string     `json:"email"`
		KnowledgeLevel    *string    `json:"knowledge_level"`
		PreferredLanguage *string    `json:"preferred_language"`
		LastActive        *time.Time `json:"last_active"`
		CreatedAt         time.Time  `json:"created_at"`
		UpdatedAt         time.Time  `json:"updated_at"`
	}{
		ID:                u.ID,
		Email:             u.Email,
		KnowledgeLevel:    nullStringToPointer(u.KnowledgeLevel),
		PreferredLanguage: nullStringToPointer(u.PreferredLanguage),
		LastActive:        nullTimeToPointer(u.LastActive),
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	})
}

// EffectiveKnowledgeLevel returns the user's knowledge level, defaulting to beginner.
func (u *User) EffectiveKnowledgeLevel() KnowledgeLevel {
	if u.KnowledgeLevel.Valid {
		return ParseKnowledgeLevel(u.KnowledgeLevel.String)
	}
	return LevelBeginner
}

// EffectiveLanguage returns the user's preferred language, defaulting to English.
func (u *User) EffectiveLanguage() string {
	if u.PreferredLanguage.Valid && u.PreferredLanguage.String != "" {
		return u.PreferredLanguage.String
	}
	return "en"
}

// Helper functions for converting sql.Null types to pointers
func nullStringToPointer(ns sql.NullString) *string {
	if ns.Valid {
		return &ns.String
	}
	return nil
}

func nullTimeToPointer(nt sql.NullTime) *time.Time {
	if nt.Valid {
		return &nt.Time
	}
	return nil
}

// TurnRole identifies who produced a conversation turn.
type TurnRole string

const (
	// RoleUser marks a turn written by the user
	RoleUser TurnRole = "user"
	// RoleModel marks a turn produced by the model
	RoleModel TurnRole = "model"
)

// Attachment is an inline binary payload attached to a user turn.
type Attachment struct {
	MimeType    string `json:"mimeType"`
	Payload     string `json:"payload"` // base64-encoded bytes
	DisplayName string `json:"displayName,omitempty"`
	Kind        string `json:"kind,omitempty"` // "image" or "file"
}

// ConversationTurn is one immutable entry in a conversation's history.
type ConversationTurn struct {
	ID             string        `json:"id"`
	ConversationID string        `json:"conversation_id"`
	Role           TurnRole      `json:"role"`
	Text           string        `json:"text"`
	Attachments    []Attachment  `json:"attachments,omitempty"`
	Quiz           *QuizQuestion `json:"quizData,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Conversation groups turns under one owner, mode, and title.
type Conversation struct {
	ID        string             `json:"id"`
	UserID    int                `json:"user_id"`
	Title     string             `json:"title"`
	Mode      OperatingMode      `json:"mode"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
	Turns     []ConversationTurn `json:"turns,omitempty"`
}

// QuizQuestion is one multiple-choice question.
type QuizQuestion struct {
	QuestionText       string   `json:"questionText"`
	Options            []string `json:"options"`
	CorrectOptionIndex int      `json:"correctOptionIndex"`
	Explanation        string   `json:"explanation"`
}

// AnalysisFinding is one entry of an analysis report.
type AnalysisFinding struct {
	Category string `json:"category"`
	Details  string `json:"details"`
}

// ChartSlice is one slice of the analysis chart.
type ChartSlice struct {
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	ColorHint string  `json:"colorHint,omitempty"`
}

// AnalysisReport is a structured security analysis of user-supplied material.
type AnalysisReport struct {
	RiskLevel   RiskLevel         `json:"riskLevel"`
	Score       int               `json:"score"`
	Findings    []AnalysisFinding `json:"findings"`
	ChartSlices []ChartSlice      `json:"chartSlices"`
}

// ResultKind tags a GenerationResult.
type ResultKind string

const (
	// KindText is an unstructured text reply
	KindText ResultKind = "text"
	// KindQuiz is a reply carrying a quiz question
	KindQuiz ResultKind = "quiz"
	// KindAnalysis is a reply carrying an analysis report
	KindAnalysis ResultKind = "analysis"
)

// GenerationResult is the output contract of a chat turn: plain text, a quiz
// question with optional lead-in prose, or an analysis report.
type GenerationResult struct {
	Kind     ResultKind      `json:"kind"`
	Text     string          `json:"displayText"`
	Quiz     *QuizQuestion   `json:"quizData,omitempty"`
	Analysis *AnalysisReport `json:"analysisData,omitempty"`
}

// PlainText builds a text-kind result.
func PlainText(text string) *GenerationResult {
	return &GenerationResult{Kind: KindText, Text: text}
}

// QuizResult builds a quiz-kind result with optional lead-in display text.
func QuizResult(q *QuizQuestion, leadIn string) *GenerationResult {
	return &GenerationResult{Kind: KindQuiz, Text: leadIn, Quiz: q}
}

// AnalysisResult builds an analysis-kind result.
func AnalysisResult(report *AnalysisReport, displayText string) *GenerationResult {
	return &GenerationResult{Kind: KindAnalysis, Text: displayText, Analysis: report}
}

// QuizSessionState is the authoritative per-conversation quiz record. It is
// updated transactionally with each answered question; the current question
// is stored here so gameplay never re-scans history.
type QuizSessionState struct {
	ConversationID  string        `json:"conversation_id"`
	Score           int           `json:"score"`
	QuestionsAsked  int           `json:"questions_asked"`
	CurrentQuestion *QuizQuestion `json:"current_question,omitempty"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
