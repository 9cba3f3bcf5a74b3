// Package clomap maps exam questions to Course Learning Outcomes with a
// generative-language model. Its own work is text extraction, prompt
// construction and defensive parsing of the model's JSON reply; the
// scoring and classification intelligence lives in the model.
package clomap

import "strings"

// Bloom's taxonomy levels, ordered lowest to highest cognitive demand.
const (
	BloomRemember   = "remember"
	BloomUnderstand = "understand"
	BloomApply      = "apply"
	BloomAnalyze    = "analyze"
	BloomEvaluate   = "evaluate"
	BloomCreate     = "create"

	// BloomUnknown is the sentinel for a missing or corrupt classification.
	// The model never gets to invent a seventh category.
	BloomUnknown = "unknown"
)

// BloomLevels is the fixed classification vocabulary sent to the model.
var BloomLevels = []string{
	BloomRemember, BloomUnderstand, BloomApply, BloomAnalyze, BloomEvaluate, BloomCreate,
}

// normalizeBloomLevel maps a model-supplied level onto the fixed
// vocabulary, defaulting to BloomUnknown.
func normalizeBloomLevel(level string) string {
	level = strings.ToLower(strings.TrimSpace(level))
	for _, l := range BloomLevels {
		if level == l {
			return l
		}
	}
	return BloomUnknown
}

// CLO is one Course Learning Outcome, numbered uniquely within its course.
type CLO struct {
	Number      int    `json:"number"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

// CLOMapping links a question to one outcome with a 0-100 relevance score.
type CLOMapping struct {
	CLONumber      int    `json:"clo_number"`
	RelevanceScore int    `json:"relevance_score"`
	Justification  string `json:"justification"`
}

// BloomsAnalysis classifies a question's cognitive demand.
type BloomsAnalysis struct {
	DetectedLevel string `json:"detected_level"`
	Reasoning     string `json:"reasoning"`
}

// ImprovedQuestion is an optional model-suggested rewrite.
type ImprovedQuestion struct {
	Text        string `json:"text"`
	TargetCLO   int    `json:"target_clo"`
	TargetLevel string `json:"target_level"`
	Explanation string `json:"explanation"`
}

// QuestionAnalysis is the normalized analysis of one extracted question.
type QuestionAnalysis struct {
	Number     int               `json:"question_number"`
	Text       string            `json:"question_text"`
	MappedCLOs []CLOMapping      `json:"mapped_clos"`
	Blooms     BloomsAnalysis    `json:"blooms_analysis"`
	Issues     []string          `json:"issues"`
	Improved   *ImprovedQuestion `json:"improved_question"`
}

// Result is the full output of one pipeline invocation. It is handed to
// the caller by value and never persisted here.
type Result struct {
	Questions          []QuestionAnalysis `json:"questions"`
	TotalQuestions     int                `json:"total_questions"`
	SuccessfullyMapped int                `json:"successfully_mapped"`
	UnmappedQuestions  int                `json:"unmapped_questions"`
	ProcessingTimeMS   int64              `json:"processing_time_ms"`
	OverallSummary     string             `json:"overall_summary"`
	Recommendations    []string           `json:"recommendations"`
}

// Extraction is the tagged result of reading question text out of a file.
type Extraction struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Err     string `json:"error,omitempty"`
}
