// Package geminidata is a typed REST client for the Gemini Data Analytics
// service: data agent CRUD, conversations, stored messages, and the
// server-streaming chat call. Credentials are per-request, so every method
// takes the authenticated *http.Client built from the caller's bearer token.
package geminidata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dataqna/backend/internal/apperr"
)

const defaultEndpoint = "https://geminidataanalytics.googleapis.com/v1beta"

// APIError is the JSON error body the service returns on non-2xx responses.
type APIError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Status, e.Code, e.Message)
}

// IsPermissionDenied reports whether err wraps an upstream 403. Conversation
// listing soft-fails on these instead of breaking the UI.
func IsPermissionDenied(err error) bool {
	var ae *APIError
	return errors.As(err, &ae) && ae.Code == http.StatusForbidden
}

// Client calls the Gemini Data Analytics REST surface.
type Client struct {
	endpoint     string
	pollInterval time.Duration
}

// Option configures the client.
type Option func(*Client)

// WithEndpoint sets a custom API endpoint (tests, proxies). Empty is ignored.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

// WithPollInterval sets the long-running-operation poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// NewClient creates a Gemini Data Analytics client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:     defaultEndpoint,
		pollInterval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListDataAgents lists every agent under parent, following pagination.
func (c *Client) ListDataAgents(ctx context.Context, hc *http.Client, parent string) ([]DataAgent, error) {
	var agents []DataAgent
	pageToken := ""
	for {
		u := c.endpoint + "/" + parent + "/dataAgents"
		if pageToken != "" {
			u += "?" + url.Values{"pageToken": {pageToken}}.Encode()
		}
		var page struct {
			DataAgents    []DataAgent `json:"dataAgents"`
			NextPageToken string      `json:"nextPageToken"`
		}
		if err := c.do(ctx, hc, http.MethodGet, u, nil, &page); err != nil {
			return nil, fmt.Errorf("list data agents: %w", err)
		}
		agents = append(agents, page.DataAgents...)
		if page.NextPageToken == "" {
			return agents, nil
		}
		pageToken = page.NextPageToken
	}
}

// GetDataAgent fetches one agent by full resource name.
func (c *Client) GetDataAgent(ctx context.Context, hc *http.Client, name string) (*DataAgent, error) {
	var agent DataAgent
	if err := c.do(ctx, hc, http.MethodGet, c.endpoint+"/"+name, nil, &agent); err != nil {
		return nil, fmt.Errorf("get data agent %s: %w", name, err)
	}
	return &agent, nil
}

// CreateDataAgent submits the create call and waits for the returned
// long-running operation to resolve, so callers get the stored resource.
func (c *Client) CreateDataAgent(ctx context.Context, hc *http.Client, parent, agentID string, agent *DataAgent) (*DataAgent, error) {
	u := c.endpoint + "/" + parent + "/dataAgents?" + url.Values{"dataAgentId": {agentID}}.Encode()
	var op operation
	if err := c.do(ctx, hc, http.MethodPost, u, agent, &op); err != nil {
		return nil, fmt.Errorf("create data agent: %w", err)
	}
	resolved, err := c.waitOperation(ctx, hc, &op)
	if err != nil {
		return nil, fmt.Errorf("create data agent: %w", err)
	}
	var created DataAgent
	if len(resolved.Response) > 0 {
		if err := json.Unmarshal(resolved.Response, &created); err != nil {
			return nil, apperr.Upstream(err, "malformed create operation response")
		}
	}
	if created.Name == "" {
		created = *agent
	}
	return &created, nil
}

// UpdateDataAgent issues a full-field-mask replace of the agent.
func (c *Client) UpdateDataAgent(ctx context.Context, hc *http.Client, agent *DataAgent) (*DataAgent, error) {
	u := c.endpoint + "/" + agent.Name + "?" + url.Values{"updateMask": {"*"}}.Encode()
	var updated DataAgent
	if err := c.do(ctx, hc, http.MethodPatch, u, agent, &updated); err != nil {
		return nil, fmt.Errorf("update data agent %s: %w", agent.Name, err)
	}
	// Some update responses come back as an immediately-done operation.
	if updated.Name == "" {
		updated = *agent
	}
	return &updated, nil
}

// DeleteDataAgent deletes the agent by full resource name.
func (c *Client) DeleteDataAgent(ctx context.Context, hc *http.Client, name string) error {
	if err := c.do(ctx, hc, http.MethodDelete, c.endpoint+"/"+name, nil, nil); err != nil {
		return fmt.Errorf("delete data agent %s: %w", name, err)
	}
	return nil
}

// ListConversations lists conversations under parent. Filtering down to one
// agent happens client-side in the handler.
func (c *Client) ListConversations(ctx context.Context, hc *http.Client, parent string) ([]Conversation, error) {
	var convos []Conversation
	pageToken := ""
	for {
		q := url.Values{"pageSize": {"100"}}
		if pageToken != "" {
			q.Set("pageToken", pageToken)
		}
		u := c.endpoint + "/" + parent + "/conversations?" + q.Encode()
		var page struct {
			Conversations []Conversation `json:"conversations"`
			NextPageToken string         `json:"nextPageToken"`
		}
		if err := c.do(ctx, hc, http.MethodGet, u, nil, &page); err != nil {
			return nil, fmt.Errorf("list conversations: %w", err)
		}
		convos = append(convos, page.Conversations...)
		if page.NextPageToken == "" {
			return convos, nil
		}
		pageToken = page.NextPageToken
	}
}

// CreateConversation creates a conversation under parent.
func (c *Client) CreateConversation(ctx context.Context, hc *http.Client, parent string, conv *Conversation) (*Conversation, error) {
	var created Conversation
	u := c.endpoint + "/" + parent + "/conversations"
	if err := c.do(ctx, hc, http.MethodPost, u, conv, &created); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return &created, nil
}

// ListMessages lists every stored message of a conversation.
func (c *Client) ListMessages(ctx context.Context, hc *http.Client, conversation string) ([]StoredMessage, error) {
	var msgs []StoredMessage
	pageToken := ""
	for {
		u := c.endpoint + "/" + conversation + "/messages"
		if pageToken != "" {
			u += "?" + url.Values{"pageToken": {pageToken}}.Encode()
		}
		var page struct {
			Messages      []StoredMessage `json:"messages"`
			NextPageToken string          `json:"nextPageToken"`
		}
		if err := c.do(ctx, hc, http.MethodGet, u, nil, &page); err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}
		msgs = append(msgs, page.Messages...)
		if page.NextPageToken == "" {
			return msgs, nil
		}
		pageToken = page.NextPageToken
	}
}

// Chat issues the server-streaming chat call. The response body is a JSON
// array streamed element by element; fn is invoked for each message as soon
// as it decodes, so the caller can flush incrementally. fn returning an
// error aborts the stream.
func (c *Client) Chat(ctx context.Context, hc *http.Client, req *ChatRequest, fn func(*Message) error) error {
	body, err := json.Marshal(req)
	if err != nil {
		return apperr.Upstream(err, "encode chat request")
	}
	u := c.endpoint + "/" + req.Parent + ":chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return apperr.Unavailable(err, "build chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(httpReq)
	if err != nil {
		return apperr.Unavailable(err, "chat call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFrom(resp)
	}

	dec := json.NewDecoder(resp.Body)
	if _, err := dec.Token(); err != nil { // opening bracket
		return apperr.Upstream(err, "malformed chat stream")
	}
	for dec.More() {
		var msg Message
		if err := dec.Decode(&msg); err != nil {
			return apperr.Upstream(err, "decode chat chunk")
		}
		if err := fn(&msg); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil && err != io.EOF { // closing bracket
		return apperr.Upstream(err, "malformed chat stream")
	}
	return nil
}

// operation is the long-running-operation envelope returned by create calls.
type operation struct {
	Name     string          `json:"name"`
	Done     bool            `json:"done"`
	Error    *APIError       `json:"error,omitempty"`
	Response json.RawMessage `json:"response,omitempty"`
}

func (c *Client) waitOperation(ctx context.Context, hc *http.Client, op *operation) (*operation, error) {
	for !op.Done {
		select {
		case <-ctx.Done():
			return nil, apperr.Unavailable(ctx.Err(), "operation %s not resolved", op.Name)
		case <-time.After(c.pollInterval):
		}
		var next operation
		if err := c.do(ctx, hc, http.MethodGet, c.endpoint+"/"+op.Name, nil, &next); err != nil {
			return nil, err
		}
		*op = next
	}
	if op.Error != nil {
		return nil, apperr.Upstream(op.Error, "operation failed")
	}
	return op, nil
}

// do runs one JSON request/response round trip with taxonomy translation.
func (c *Client) do(ctx context.Context, hc *http.Client, method, u string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return apperr.Upstream(err, "encode request")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return apperr.Unavailable(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return apperr.Unavailable(err, "call failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.errorFrom(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Upstream(err, "decode response")
	}
	return nil
}

// errorFrom translates a non-2xx response into the error taxonomy, keeping
// the upstream detail and status code reachable via errors.As.
func (c *Client) errorFrom(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	apiErr := &APIError{Code: resp.StatusCode, Status: resp.Status, Message: string(raw)}
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		apiErr = envelope.Error
		if apiErr.Code == 0 {
			apiErr.Code = resp.StatusCode
		}
	}
	log.Debug().Int("code", apiErr.Code).Str("status", apiErr.Status).Msg("upstream error")

	switch apiErr.Code {
	case http.StatusNotFound:
		return apperr.Wrap(apperr.KindNotFound, apiErr, "resource not found")
	case http.StatusUnauthorized:
		return apperr.Wrap(apperr.KindUnauthorized, apiErr, "upstream rejected credentials")
	default:
		return apperr.Upstream(apiErr, "upstream call failed")
	}
}
