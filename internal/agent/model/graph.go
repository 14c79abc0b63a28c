package model

// AppState stores per-invocation state for the Eino Graph.
// Concurrency model:
//   - This struct is registered as Graph Local State via compose.WithGenLocalState.
//   - All reads/writes happen only inside Eino state handlers:
//     WithStatePreHandler, WithStatePostHandler, or compose.ProcessState.
//   - Eino serializes access to state within these handlers, so no additional
//     mutex/atomic is required as long as you never touch it outside handlers.
type AppState struct {
	Question     string
	Filters      FilterSet    // deterministic filters extracted before resolution
	QuestionType QuestionType // classifier label, drives the composer tone
	Intent       *StructuredIntent

	// Accumulated total LLM cost (USD) across model invocations for this query
	TotalCostUSD float64
}

// QueryInput is the public input for answering one budget question.
type QueryInput struct {
	Question string `json:"question"`
}
