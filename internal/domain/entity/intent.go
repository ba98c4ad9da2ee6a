package entity

// Intent is the routing decision for an incoming question: retrieve document
// context first, or answer from general knowledge.
type Intent string

const (
	IntentRAG     Intent = "RAG"
	IntentGeneral Intent = "GENERAL"
)
