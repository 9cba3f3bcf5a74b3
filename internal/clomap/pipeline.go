package clomap

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// Pipeline turns raw question text plus a course's learning outcomes into
// a Result via exactly one model call. It holds no per-invocation state;
// concurrent calls are independent.
type Pipeline struct {
	gen Generator
}

// NewPipeline creates a pipeline backed by the given generator.
func NewPipeline(gen Generator) *Pipeline {
	return &Pipeline{gen: gen}
}

// Process is the main entry point. It never returns an error: every
// failure mode (missing input, model failure, unparseable reply) becomes
// a zero-question Result whose summary and recommendations explain what
// happened.
func (p *Pipeline) Process(ctx context.Context, rawText string, outcomes []CLO) Result {
	start := time.Now()

	if strings.TrimSpace(rawText) == "" {
		return Result{
			Questions:        []QuestionAnalysis{},
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			OverallSummary:   "No question text was provided, so no analysis was performed.",
			Recommendations:  []string{"Paste question text or upload a document containing questions, then run the analysis again."},
		}
	}
	if len(outcomes) == 0 {
		return Result{
			Questions:        []QuestionAnalysis{},
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			OverallSummary:   "The course has no active learning outcomes to map against.",
			Recommendations:  []string{"Add at least one active learning outcome to the course before running the analysis."},
		}
	}

	prompt := buildMappingPrompt(rawText, outcomes)

	reply, err := p.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Error("model call failed", "error", err)
		return Result{
			Questions:        []QuestionAnalysis{},
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			OverallSummary:   "The analysis service could not be reached. No questions were analyzed.",
			Recommendations:  []string{"Try again in a few minutes. If the problem persists, contact your administrator."},
		}
	}

	questions, summary, recommendations, ok := parseModelReply(reply)
	if !ok {
		slog.Warn("model reply unparseable", "reply_len", len(reply))
		return Result{
			Questions:        []QuestionAnalysis{},
			ProcessingTimeMS: time.Since(start).Milliseconds(),
			OverallSummary:   "The analysis response could not be parsed, so no questions were mapped.",
			Recommendations: []string{
				"Break the input into smaller chunks and analyze them separately.",
				"Reformat the questions as a simple numbered list, one question per line.",
			},
		}
	}

	mapped := 0
	for _, q := range questions {
		if len(q.MappedCLOs) > 0 {
			mapped++
		}
	}

	return Result{
		Questions:          questions,
		TotalQuestions:     len(questions),
		SuccessfullyMapped: mapped,
		UnmappedQuestions:  len(questions) - mapped,
		ProcessingTimeMS:   time.Since(start).Milliseconds(),
		OverallSummary:     summary,
		Recommendations:    recommendations,
	}
}

// stripFences removes a leading ```json or ``` fence and a trailing ```
// fence. Models wrap JSON in markdown despite instructions not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseModelReply parses and normalizes the model's JSON reply. ok is
// false only when the JSON is invalid or "questions" is not an array;
// every lesser defect is repaired with defaults.
func parseModelReply(reply string) (questions []QuestionAnalysis, summary string, recommendations []string, ok bool) {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(stripFences(reply)), &parsed); err != nil {
		return nil, "", nil, false
	}

	rawQuestions, isArray := parsed["questions"].([]any)
	if !isArray {
		return nil, "", nil, false
	}

	questions = make([]QuestionAnalysis, 0, len(rawQuestions))
	for i, rq := range rawQuestions {
		m, _ := rq.(map[string]any)
		questions = append(questions, normalizeQuestion(i, m))
	}

	summary = asString(parsed["overall_summary"])
	if summary == "" {
		summary = "Analysis complete."
	}
	recommendations = asStringSlice(parsed["recommendations"])

	return questions, summary, recommendations, true
}

// normalizeQuestion repairs one question object: missing numbers default
// to position, missing collections to empty, a missing or corrupt Bloom
// level to the unknown sentinel, and relevance scores are clamped to
// [0,100].
func normalizeQuestion(index int, m map[string]any) QuestionAnalysis {
	q := QuestionAnalysis{
		Number:     index + 1,
		MappedCLOs: []CLOMapping{},
		Blooms:     BloomsAnalysis{DetectedLevel: BloomUnknown},
		Issues:     []string{},
	}
	if m == nil {
		return q
	}

	if n, isNum := asInt(m["question_number"]); isNum {
		q.Number = n
	}
	q.Text = asString(m["question_text"])

	if rawCLOs, isArray := m["mapped_clos"].([]any); isArray {
		for _, rc := range rawCLOs {
			cm, isMap := rc.(map[string]any)
			if !isMap {
				continue
			}
			cloNum, _ := asInt(cm["clo_number"])
			score, _ := asInt(cm["relevance_score"])
			q.MappedCLOs = append(q.MappedCLOs, CLOMapping{
				CLONumber:      cloNum,
				RelevanceScore: clampScore(score),
				Justification:  asString(cm["justification"]),
			})
		}
	}

	if blooms, isMap := m["blooms_analysis"].(map[string]any); isMap {
		q.Blooms = BloomsAnalysis{
			DetectedLevel: normalizeBloomLevel(asString(blooms["detected_level"])),
			Reasoning:     asString(blooms["reasoning"]),
		}
	}

	q.Issues = asStringSlice(m["issues"])

	if imp, isMap := m["improved_question"].(map[string]any); isMap {
		target, _ := asInt(imp["target_clo"])
		q.Improved = &ImprovedQuestion{
			Text:        asString(imp["text"]),
			TargetCLO:   target,
			TargetLevel: normalizeBloomLevel(asString(imp["target_level"])),
			Explanation: asString(imp["explanation"]),
		}
	}

	return q
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func asStringSlice(v any) []string {
	raw, isArray := v.([]any)
	if !isArray {
		return []string{}
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, isStr := item.(string); isStr && s != "" {
			out = append(out, s)
		}
	}
	return out
}
