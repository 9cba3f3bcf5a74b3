package clomap_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/crs-edu/crs-backend/internal/clomap"
)

// fakeGenerator returns canned replies and records prompts.
type fakeGenerator struct {
	reply     string
	docReply  string
	err       error
	prompts   []string
	docCalls  int
	docMIME   string
	docPrompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeGenerator) GenerateWithDocument(_ context.Context, prompt string, _ []byte, mime string) (string, error) {
	f.docCalls++
	f.docMIME = mime
	f.docPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.docReply, nil
}

var outcomes = []clomap.CLO{
	{Number: 1, Description: "Explain the TCP handshake", Active: true},
	{Number: 2, Description: "Design a normalized relational schema", Active: true},
}

const wellFormedReply = `{
	"questions": [
		{
			"question_number": 1,
			"question_text": "Describe the three-way handshake.",
			"mapped_clos": [{"clo_number": 1, "relevance_score": 92, "justification": "Directly about TCP."}],
			"blooms_analysis": {"detected_level": "Understand", "reasoning": "Asks for a description."},
			"issues": [],
			"improved_question": null
		},
		{
			"question_number": 2,
			"question_text": "What year was SQL invented?",
			"mapped_clos": [],
			"blooms_analysis": {"detected_level": "remember", "reasoning": "Pure recall."},
			"issues": ["Not aligned with any outcome"],
			"improved_question": {"text": "Normalize this schema to 3NF.", "target_clo": 2, "target_level": "apply", "explanation": "Targets CLO2."}
		}
	],
	"overall_summary": "One of two questions maps cleanly.",
	"recommendations": ["Replace the trivia question."]
}`

func TestProcess_WellFormed(t *testing.T) {
	gen := &fakeGenerator{reply: wellFormedReply}
	p := clomap.NewPipeline(gen)

	res := p.Process(context.Background(), "1. Describe the three-way handshake.\n2. What year was SQL invented?", outcomes)

	if res.TotalQuestions != 2 {
		t.Fatalf("TotalQuestions = %d, want 2", res.TotalQuestions)
	}
	if res.SuccessfullyMapped != 1 || res.UnmappedQuestions != 1 {
		t.Errorf("mapped/unmapped = %d/%d, want 1/1", res.SuccessfullyMapped, res.UnmappedQuestions)
	}
	if res.OverallSummary != "One of two questions maps cleanly." {
		t.Errorf("OverallSummary = %q", res.OverallSummary)
	}
	if res.ProcessingTimeMS < 0 {
		t.Errorf("ProcessingTimeMS = %d, want >= 0", res.ProcessingTimeMS)
	}

	q1 := res.Questions[0]
	if q1.Blooms.DetectedLevel != "understand" {
		t.Errorf("level = %q, want normalized lowercase understand", q1.Blooms.DetectedLevel)
	}
	if q1.Improved != nil {
		t.Error("q1.Improved should stay nil")
	}

	q2 := res.Questions[1]
	if q2.Improved == nil || q2.Improved.TargetCLO != 2 {
		t.Errorf("q2.Improved = %+v, want rewrite targeting CLO2", q2.Improved)
	}
	if len(q2.Issues) != 1 {
		t.Errorf("q2.Issues = %v, want one issue", q2.Issues)
	}
}

func TestProcess_PromptContents(t *testing.T) {
	gen := &fakeGenerator{reply: `{"questions": []}`}
	p := clomap.NewPipeline(gen)

	text := "1. Explain congestion control."
	p.Process(context.Background(), text, outcomes)

	if len(gen.prompts) != 1 {
		t.Fatalf("model calls = %d, want exactly 1", len(gen.prompts))
	}
	prompt := gen.prompts[0]
	for _, want := range []string{
		"CLO1: Explain the TCP handshake",
		"CLO2: Design a normalized relational schema",
		text,
		"remember, understand, apply, analyze, evaluate, create",
		"ONLY a JSON object",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestProcess_EmptyInputGuards(t *testing.T) {
	gen := &fakeGenerator{reply: wellFormedReply}
	p := clomap.NewPipeline(gen)

	blank := p.Process(context.Background(), "   \n\t", outcomes)
	noOutcomes := p.Process(context.Background(), "1. A real question?", nil)

	for name, res := range map[string]clomap.Result{
		"blank text":  blank,
		"no outcomes": noOutcomes,
	} {
		if res.TotalQuestions != 0 {
			t.Errorf("%s: TotalQuestions = %d, want 0", name, res.TotalQuestions)
		}
		if res.ProcessingTimeMS < 0 {
			t.Errorf("%s: ProcessingTimeMS = %d, want >= 0", name, res.ProcessingTimeMS)
		}
		if res.OverallSummary == "" {
			t.Errorf("%s: OverallSummary is empty", name)
		}
	}
	if len(gen.prompts) != 0 {
		t.Errorf("model calls = %d, want 0 for guarded inputs", len(gen.prompts))
	}
}

func TestProcess_MalformedJSON(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{not valid json\n```"}
	p := clomap.NewPipeline(gen)

	res := p.Process(context.Background(), "1. Question?", outcomes)

	if res.TotalQuestions != 0 {
		t.Errorf("TotalQuestions = %d, want 0", res.TotalQuestions)
	}
	if !strings.Contains(strings.ToLower(res.OverallSummary), "parse") {
		t.Errorf("OverallSummary = %q, want parsing failure mentioned", res.OverallSummary)
	}
	if len(res.Recommendations) == 0 {
		t.Error("Recommendations empty, want reformatting advice")
	}
}

func TestProcess_FenceVariants(t *testing.T) {
	for name, wrapped := range map[string]string{
		"json fence": "```json\n" + wellFormedReply + "\n```",
		"bare fence": "```\n" + wellFormedReply + "\n```",
		"no fence":   wellFormedReply,
	} {
		t.Run(name, func(t *testing.T) {
			p := clomap.NewPipeline(&fakeGenerator{reply: wrapped})
			res := p.Process(context.Background(), "1. Q?", outcomes)
			if res.TotalQuestions != 2 {
				t.Errorf("TotalQuestions = %d, want 2", res.TotalQuestions)
			}
		})
	}
}

func TestProcess_MissingQuestionsField(t *testing.T) {
	for name, reply := range map[string]string{
		"absent":    `{"overall_summary": "hi"}`,
		"not array": `{"questions": "twelve"}`,
	} {
		t.Run(name, func(t *testing.T) {
			p := clomap.NewPipeline(&fakeGenerator{reply: reply})
			res := p.Process(context.Background(), "1. Q?", outcomes)
			if res.TotalQuestions != 0 {
				t.Errorf("TotalQuestions = %d, want 0", res.TotalQuestions)
			}
			if len(res.Recommendations) == 0 {
				t.Error("Recommendations empty on parse failure")
			}
		})
	}
}

func TestProcess_FieldDefaulting(t *testing.T) {
	reply := `{
		"questions": [
			{"question_text": "Orphan question with nothing else"},
			{"question_number": 7, "question_text": "Wrong types", "mapped_clos": "nope", "issues": 42, "blooms_analysis": {"detected_level": "galaxy brain"}}
		]
	}`
	p := clomap.NewPipeline(&fakeGenerator{reply: reply})

	res := p.Process(context.Background(), "1. Q?", outcomes)
	if res.TotalQuestions != 2 {
		t.Fatalf("TotalQuestions = %d, want 2", res.TotalQuestions)
	}

	q1 := res.Questions[0]
	if q1.Number != 1 {
		t.Errorf("q1.Number = %d, want index+1 default", q1.Number)
	}
	if q1.MappedCLOs == nil || len(q1.MappedCLOs) != 0 {
		t.Errorf("q1.MappedCLOs = %v, want empty slice", q1.MappedCLOs)
	}
	if q1.Issues == nil || len(q1.Issues) != 0 {
		t.Errorf("q1.Issues = %v, want empty slice", q1.Issues)
	}
	if q1.Blooms.DetectedLevel != clomap.BloomUnknown {
		t.Errorf("q1 level = %q, want unknown sentinel", q1.Blooms.DetectedLevel)
	}

	q2 := res.Questions[1]
	if q2.Number != 7 {
		t.Errorf("q2.Number = %d, want supplied 7", q2.Number)
	}
	if len(q2.MappedCLOs) != 0 || len(q2.Issues) != 0 {
		t.Errorf("q2 collections = %v/%v, want empty for wrong-typed fields", q2.MappedCLOs, q2.Issues)
	}
	if q2.Blooms.DetectedLevel != clomap.BloomUnknown {
		t.Errorf("q2 level = %q, want unknown for invented category", q2.Blooms.DetectedLevel)
	}
	if res.OverallSummary == "" {
		t.Error("OverallSummary defaulted to empty")
	}
}

func TestProcess_ScoreClamping(t *testing.T) {
	reply := `{
		"questions": [
			{"question_text": "Q", "mapped_clos": [
				{"clo_number": 1, "relevance_score": 180, "justification": "too high"},
				{"clo_number": 2, "relevance_score": -5, "justification": "too low"}
			]}
		]
	}`
	p := clomap.NewPipeline(&fakeGenerator{reply: reply})

	res := p.Process(context.Background(), "1. Q?", outcomes)
	clos := res.Questions[0].MappedCLOs
	if clos[0].RelevanceScore != 100 {
		t.Errorf("score = %d, want clamped to 100", clos[0].RelevanceScore)
	}
	if clos[1].RelevanceScore != 0 {
		t.Errorf("score = %d, want clamped to 0", clos[1].RelevanceScore)
	}
}

func TestProcess_ModelFailure(t *testing.T) {
	p := clomap.NewPipeline(&fakeGenerator{err: errors.New("connection refused")})

	res := p.Process(context.Background(), "1. Q?", outcomes)
	if res.TotalQuestions != 0 {
		t.Errorf("TotalQuestions = %d, want 0", res.TotalQuestions)
	}
	if res.OverallSummary == "" || len(res.Recommendations) == 0 {
		t.Error("failure result must carry summary and recommendations")
	}
}

func TestProcess_CountConsistency(t *testing.T) {
	p := clomap.NewPipeline(&fakeGenerator{reply: wellFormedReply})

	res := p.Process(context.Background(), "1. Q?\n2. Q?", outcomes)
	if res.SuccessfullyMapped+res.UnmappedQuestions != res.TotalQuestions {
		t.Errorf("mapped %d + unmapped %d != total %d",
			res.SuccessfullyMapped, res.UnmappedQuestions, res.TotalQuestions)
	}
	mapped := 0
	for _, q := range res.Questions {
		if len(q.MappedCLOs) > 0 {
			mapped++
		}
	}
	if mapped != res.SuccessfullyMapped {
		t.Errorf("questions with mappings = %d, SuccessfullyMapped = %d", mapped, res.SuccessfullyMapped)
	}
}
