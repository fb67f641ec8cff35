// Package translate defines the translation collaborator boundary and
// ships an OpenAI-backed implementation.
//
// The engine never talks to a provider directly; it hands batches of
// source strings to a Translator and gets target strings back in the
// same order. Errors carry a kind so the orchestrator can decide
// between retrying a batch and failing it. Units that are not worth
// sending (blank text, markup fragments, oversized blocks) are
// filtered out before batching and keep their source text.
package translate
