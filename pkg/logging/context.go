package logging

import "context"

type contextKey string

const (
	generationKey  contextKey = "search_generation"
	candidateIDKey contextKey = "search_candidate_id"
)

// WithGeneration tags the context with the generation in progress so every
// log line emitted underneath carries it.
func WithGeneration(ctx context.Context, generation int) context.Context {
	return context.WithValue(ctx, generationKey, generation)
}

// GetGeneration extracts the generation index from the context.
func GetGeneration(ctx context.Context) (int, bool) {
	g, ok := ctx.Value(generationKey).(int)
	return g, ok
}

// WithCandidateID tags the context with the candidate currently being
// evaluated.
func WithCandidateID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, candidateIDKey, id)
}

// GetCandidateID extracts the candidate id from the context.
func GetCandidateID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(candidateIDKey).(string)
	return id, ok
}
