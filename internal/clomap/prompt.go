package clomap

import (
	"fmt"
	"strings"
)

// transcriptionPrompt asks the model to lift question text out of a PDF
// verbatim before the mapping call. Numbering must survive so question
// order is preserved downstream.
const transcriptionPrompt = `Transcribe every exam question from the attached document, one per line, preserving the original numbering exactly. Output only the question text, no commentary, no headers, no answers.`

// buildMappingPrompt assembles the single prompt for the mapping call:
// the outcome list, the raw question text verbatim, the fixed Bloom
// vocabulary and a strict JSON-only output instruction.
func buildMappingPrompt(rawText string, outcomes []CLO) string {
	var b strings.Builder

	b.WriteString("You are an expert in curriculum alignment for higher education.\n")
	b.WriteString("Map each exam question in the input to the Course Learning Outcomes (CLOs) below.\n\n")

	b.WriteString("COURSE LEARNING OUTCOMES:\n")
	for _, o := range outcomes {
		fmt.Fprintf(&b, "CLO%d: %s\n", o.Number, o.Description)
	}

	b.WriteString("\nINPUT QUESTIONS:\n")
	b.WriteString(rawText)
	b.WriteString("\n\n")

	b.WriteString("COGNITIVE LEVELS (use exactly one of): ")
	b.WriteString(strings.Join(BloomLevels, ", "))
	b.WriteString("\n\n")

	b.WriteString(`For every question: score the relevance of each applicable CLO from 0 to 100 with a one-sentence justification, classify the cognitive level with reasoning, list any quality issues (ambiguity, multiple questions in one, missing context), and where the question is weak suggest an improved version.

Return ONLY a JSON object with this exact shape — no markdown fences, no commentary before or after:
{
  "questions": [
    {
      "question_number": 1,
      "question_text": "...",
      "mapped_clos": [
        {"clo_number": 1, "relevance_score": 85, "justification": "..."}
      ],
      "blooms_analysis": {"detected_level": "apply", "reasoning": "..."},
      "issues": ["..."],
      "improved_question": {"text": "...", "target_clo": 1, "target_level": "analyze", "explanation": "..."}
    }
  ],
  "overall_summary": "...",
  "recommendations": ["..."]
}
Set "improved_question" to null when the question needs no rewrite.`)

	return b.String()
}
