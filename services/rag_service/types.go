package rag_service

// RetrievedDocument is one knowledge-base passage returned by similarity
// search. Score is the cosine similarity in [0,1], higher is more relevant.
type RetrievedDocument struct {
	ID       string
	Score    float64
	Text     string
	Metadata map[string]string
}

// GeneratedAnswer is the final product of the answer pipeline.
type GeneratedAnswer struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// Role is the author of a conversation turn. Anything the frontend sends
// that is not exactly "user" is normalized to the assistant at decode time.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func ParseRole(s string) Role {
	if s == string(RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

// Label is the transcript label used when rendering prompts.
func (r Role) Label() string {
	if r == RoleUser {
		return "User"
	}
	return "Assistant"
}

// ConversationTurn is one message of the prior exchange. History is owned by
// the caller; the pipeline itself is stateless across requests.
type ConversationTurn struct {
	Role    Role
	Content string
}
