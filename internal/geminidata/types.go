package geminidata

// Wire types for the Gemini Data Analytics REST surface. Field names follow
// the service's JSON (camelCase); pointer fields encode presence so the
// normalizer can classify tagged unions without guessing.

// DataAgent is the agent resource: an identity plus a published context
// binding a system instruction to exactly one datasource.
type DataAgent struct {
	Name               string              `json:"name,omitempty"`
	DisplayName        string              `json:"displayName,omitempty"`
	Description        string              `json:"description,omitempty"`
	CreateTime         string              `json:"createTime,omitempty"`
	UpdateTime         string              `json:"updateTime,omitempty"`
	DataAnalyticsAgent *DataAnalyticsAgent `json:"dataAnalyticsAgent,omitempty"`
}

type DataAnalyticsAgent struct {
	PublishedContext *Context `json:"publishedContext,omitempty"`
}

type Context struct {
	SystemInstruction    string                `json:"systemInstruction,omitempty"`
	DatasourceReferences *DatasourceReferences `json:"datasourceReferences,omitempty"`
}

// DatasourceReferences holds exactly one datasource kind at creation time.
type DatasourceReferences struct {
	BQ     *BigQueryTableReferences `json:"bq,omitempty"`
	Looker *LookerExploreReferences `json:"looker,omitempty"`
}

type BigQueryTableReferences struct {
	TableReferences []BigQueryTableReference `json:"tableReferences,omitempty"`
}

type BigQueryTableReference struct {
	ProjectID string `json:"projectId,omitempty"`
	DatasetID string `json:"datasetId,omitempty"`
	TableID   string `json:"tableId,omitempty"`
}

type LookerExploreReferences struct {
	ExploreReferences []LookerExploreReference `json:"exploreReferences,omitempty"`
}

type LookerExploreReference struct {
	LookerInstanceURI string `json:"lookerInstanceUri,omitempty"`
	LookmlModel       string `json:"lookmlModel,omitempty"`
	Explore           string `json:"explore,omitempty"`
}

// PublishedContext returns the agent's published context, never nil.
func (a *DataAgent) PublishedContext() *Context {
	if a == nil || a.DataAnalyticsAgent == nil || a.DataAnalyticsAgent.PublishedContext == nil {
		return &Context{}
	}
	return a.DataAnalyticsAgent.PublishedContext
}

// IsLooker reports whether the agent is bound to a Looker explore, in which
// case chat calls need semantic-layer credentials attached.
func (a *DataAgent) IsLooker() bool {
	refs := a.PublishedContext().DatasourceReferences
	return refs != nil && refs.Looker != nil
}

// Conversation is a chat thread scoped to one or more agents.
type Conversation struct {
	Name         string   `json:"name,omitempty"`
	Agents       []string `json:"agents,omitempty"`
	CreateTime   string   `json:"createTime,omitempty"`
	LastUsedTime string   `json:"lastUsedTime,omitempty"`
}

// Message is one turn of a conversation: a tagged union over a user message,
// a system (assistant) message, or a single-level wrapper around another
// message.
type Message struct {
	UserMessage   *UserMessage   `json:"userMessage,omitempty"`
	SystemMessage *SystemMessage `json:"systemMessage,omitempty"`
	Message       *Message       `json:"message,omitempty"`
	Timestamp     string         `json:"timestamp,omitempty"`
}

type UserMessage struct {
	Text string `json:"text,omitempty"`
}

// SystemMessage carries exactly one of text, schema resolution, tabular data
// or a chart.
type SystemMessage struct {
	Text   *TextMessage   `json:"text,omitempty"`
	Schema *SchemaMessage `json:"schema,omitempty"`
	Data   *DataMessage   `json:"data,omitempty"`
	Chart  *ChartMessage  `json:"chart,omitempty"`
}

type TextMessage struct {
	Parts []string `json:"parts,omitempty"`
}

type SchemaMessage struct {
	Query  *SchemaQuery  `json:"query,omitempty"`
	Result *SchemaResult `json:"result,omitempty"`
}

type SchemaQuery struct {
	Question string `json:"question,omitempty"`
}

type SchemaResult struct {
	Datasources []Datasource `json:"datasources,omitempty"`
}

// Datasource is polymorphic over a warehouse table, a semantic-layer explore
// or an opaque studio id, with an optional resolved schema.
type Datasource struct {
	StudioDatasourceID     string                  `json:"studioDatasourceId,omitempty"`
	LookerExploreReference *LookerExploreReference `json:"lookerExploreReference,omitempty"`
	BigQueryTableReference *BigQueryTableReference `json:"bigqueryTableReference,omitempty"`
	Schema                 *Schema                 `json:"schema,omitempty"`
}

type Schema struct {
	Fields []Field `json:"fields,omitempty"`
}

type Field struct {
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

type DataMessage struct {
	Query        *DataQuery  `json:"query,omitempty"`
	GeneratedSQL string      `json:"generatedSql,omitempty"`
	Result       *DataResult `json:"result,omitempty"`
}

type DataQuery struct {
	Name        string       `json:"name,omitempty"`
	Question    string       `json:"question,omitempty"`
	Datasources []Datasource `json:"datasources,omitempty"`
}

// DataResult is row-oriented on the wire; rows are JSON objects keyed by
// field name and may omit fields.
type DataResult struct {
	Schema *Schema          `json:"schema,omitempty"`
	Data   []map[string]any `json:"data,omitempty"`
}

type ChartMessage struct {
	Query  *ChartQuery  `json:"query,omitempty"`
	Result *ChartResult `json:"result,omitempty"`
}

type ChartQuery struct {
	Instructions string `json:"instructions,omitempty"`
}

type ChartResult struct {
	VegaConfig map[string]any `json:"vegaConfig,omitempty"`
}

// StoredMessage is the wrapper shape returned by the message listing call.
type StoredMessage struct {
	MessageID string   `json:"messageId,omitempty"`
	Message   *Message `json:"message,omitempty"`
}

// ConversationReference ties a chat request to an existing conversation and
// its agent context.
type ConversationReference struct {
	Conversation     string            `json:"conversation,omitempty"`
	DataAgentContext *DataAgentContext `json:"dataAgentContext,omitempty"`
}

type DataAgentContext struct {
	DataAgent   string       `json:"dataAgent,omitempty"`
	Credentials *Credentials `json:"credentials,omitempty"`
}

// Credentials carries the semantic-layer OAuth client pair for Looker-backed
// agents.
type Credentials struct {
	OAuth *OAuthCredentials `json:"oauth,omitempty"`
}

type OAuthCredentials struct {
	Secret *OAuthSecret `json:"secret,omitempty"`
}

type OAuthSecret struct {
	ClientID     string `json:"clientId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
}

// ChatRequest is the server-streaming chat call payload.
type ChatRequest struct {
	Parent                string                 `json:"parent,omitempty"`
	Messages              []Message              `json:"messages,omitempty"`
	ConversationReference *ConversationReference `json:"conversationReference,omitempty"`
}
