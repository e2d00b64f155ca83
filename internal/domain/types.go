package domain

import (
	"encoding/json"
	"time"
)

// AgentType selects which interviewer persona a turn is for.
type AgentType string

const (
	AgentMain          AgentType = "main"
	AgentOrchestrator  AgentType = "orchestrator"
	AgentClarification AgentType = "clarification"
)

// IsOrchestrator reports whether replies should be parsed as structured assessments.
func (a AgentType) IsOrchestrator() bool {
	return a == AgentOrchestrator
}

// Turn is one prior message of the interview.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationConfig holds sampling parameters. Nil fields are filled by ApplyDefaults.
type GenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopK            *int     `json:"topK,omitempty"`
	TopP            *float64 `json:"topP,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	StopSequences   []string `json:"stopSequences,omitempty"`
}

const (
	DefaultTemperature     = 0.7
	DefaultTopK            = 40
	DefaultTopP            = 0.95
	DefaultMaxOutputTokens = 200
)

// DefaultGenerationConfig returns the parameters used when a request supplies none.
func DefaultGenerationConfig() GenerationConfig {
	temperature, topK, topP, maxTokens := DefaultTemperature, DefaultTopK, DefaultTopP, DefaultMaxOutputTokens
	return GenerationConfig{
		Temperature:     &temperature,
		TopK:            &topK,
		TopP:            &topP,
		MaxOutputTokens: &maxTokens,
	}
}

// ApplyDefaults fills every unset parameter from DefaultGenerationConfig.
func (g *GenerationConfig) ApplyDefaults() {
	d := DefaultGenerationConfig()
	if g.Temperature == nil {
		g.Temperature = d.Temperature
	}
	if g.TopK == nil {
		g.TopK = d.TopK
	}
	if g.TopP == nil {
		g.TopP = d.TopP
	}
	if g.MaxOutputTokens == nil {
		g.MaxOutputTokens = d.MaxOutputTokens
	}
}

// InterviewRequest is the body of POST /api/interview.
type InterviewRequest struct {
	AgentType           AgentType         `json:"agent_type,omitempty"`
	ConversationHistory []Turn            `json:"conversation_history,omitempty"`
	UserResponse        string            `json:"user_response"`
	SystemPrompt        string            `json:"system_prompt,omitempty"`
	AdditionalContext   string            `json:"additional_context,omitempty"`
	GenerationConfig    *GenerationConfig `json:"generation_config,omitempty"`
}

// ApplyDefaults sets the agent type and generation parameters when absent.
func (r *InterviewRequest) ApplyDefaults() {
	if r.AgentType == "" {
		r.AgentType = AgentMain
	}
	if r.GenerationConfig == nil {
		d := DefaultGenerationConfig()
		r.GenerationConfig = &d
		return
	}
	r.GenerationConfig.ApplyDefaults()
}

// LogEntry is one audit record. Entries are never modified after they are appended.
type LogEntry struct {
	Timestamp          time.Time `json:"timestamp"`
	AgentType          AgentType `json:"agent_type"`
	UserResponse       string    `json:"user_response"`
	ConversationLength int       `json:"conversation_length"`
}

// InterviewResult is the success envelope returned to the survey.
type InterviewResult struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data"`
	AgentType AgentType `json:"agent_type"`
}

// ContentPayload is the data of a non-orchestrator reply.
type ContentPayload struct {
	Content string `json:"content"`
}

// OrchestratorAssessment is the structured reply the orchestrator agent is prompted to produce.
type OrchestratorAssessment struct {
	Assessment  string   `json:"assessment"`
	Reasoning   string   `json:"reasoning"`
	MissingInfo []string `json:"missing_info"`
	NextAction  string   `json:"next_action"`
}

// OrchestratorFallback is used whenever the orchestrator reply is not valid JSON.
func OrchestratorFallback() OrchestratorAssessment {
	return OrchestratorAssessment{
		Assessment:  "sufficient",
		Reasoning:   "Could not parse orchestrator response",
		MissingInfo: []string{},
		NextAction:  "continue_interview",
	}
}

// ParseOrchestratorReply returns text verbatim as JSON when it is valid, or the fallback.
func ParseOrchestratorReply(text string) any {
	if !json.Valid([]byte(text)) {
		return OrchestratorFallback()
	}
	return json.RawMessage(text)
}

// LogsResult is the body of GET /api/logs.
type LogsResult struct {
	Logs       []LogEntry `json:"logs"`
	TotalCount int        `json:"total_count"`
}

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
