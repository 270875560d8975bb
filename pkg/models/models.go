// Package models defines the JSON shapes of the HTTP API: request bodies,
// response objects, and the normalized message envelope the client renders.
package models

import "github.com/dataqna/backend/internal/geminidata"

// Envelope is the stable shape every chat message is normalized into,
// whatever the richness of the underlying remote payload.
type Envelope struct {
	Type        string         `json:"type"`
	MessageType string         `json:"message_type,omitempty"`
	Content     map[string]any `json:"content"`
	Timestamp   *string        `json:"timestamp"`
}

// CreateAgentRequest is the POST /agents body. The data_source discriminator
// decides which reference triple is required.
type CreateAgentRequest struct {
	DisplayName       string `json:"display_name"`
	Description       string `json:"description"`
	SystemInstruction string `json:"system_instruction"`
	DataSource        string `json:"data_source"`

	BQProjectID string `json:"bq_project_id,omitempty"`
	BQDatasetID string `json:"bq_dataset_id,omitempty"`
	BQTableID   string `json:"bq_table_id,omitempty"`

	LookerInstanceURL string `json:"looker_instance_url,omitempty"`
	LookerModel       string `json:"looker_model,omitempty"`
	LookerExplore     string `json:"looker_explore,omitempty"`
}

// UpdateAgentRequest is the PUT /agents/{name} body. Datasource binding is
// never updatable.
type UpdateAgentRequest struct {
	DisplayName       string `json:"display_name"`
	Description       string `json:"description"`
	SystemInstruction string `json:"system_instruction"`
}

// AgentResponse is one agent in the GET /agents listing.
type AgentResponse struct {
	Name                 string                           `json:"name"`
	DisplayName          string                           `json:"display_name"`
	Description          string                           `json:"description"`
	CreateTime           *string                          `json:"create_time"`
	UpdateTime           *string                          `json:"update_time"`
	SystemInstruction    string                           `json:"system_instruction"`
	DatasourceReferences *geminidata.DatasourceReferences `json:"datasource_references"`
}

// AgentSummary is the short agent shape echoed by create/update.
type AgentSummary struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// ConversationResponse is one conversation in the chat listing.
type ConversationResponse struct {
	Name         string   `json:"name"`
	CreateTime   *string  `json:"create_time"`
	LastUsedTime *string  `json:"last_used_time"`
	Agents       []string `json:"agents"`
}

// MessageRequest is the chat-send body.
type MessageRequest struct {
	Text string `json:"text"`
}
