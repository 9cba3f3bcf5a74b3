package clomap

import "context"

// Generator is the narrow model capability the pipeline depends on.
// *ai.Router satisfies it; tests inject fakes returning canned (including
// deliberately malformed) responses.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithDocument(ctx context.Context, prompt string, data []byte, mime string) (string, error)
}
