package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/dataqna/backend/internal/api/middleware"
	"github.com/dataqna/backend/internal/apperr"
	"github.com/dataqna/backend/internal/geminidata"
	"github.com/dataqna/backend/internal/normalize"
	"github.com/dataqna/backend/pkg/models"
)

// Agent and conversation names are full resource paths with slashes, so the
// chat routes are registered as wildcards and dispatched on the trailing
// "/messages" segment here.

// ChatGet serves GET /chat/conversations/{agent} and
// GET /chat/conversations/{conversation}/messages.
func (h *Handlers) ChatGet(w http.ResponseWriter, r *http.Request) {
	wild := chi.URLParam(r, "*")
	if name, ok := strings.CutSuffix(wild, "/messages"); ok {
		h.listMessages(w, r, name)
		return
	}
	h.listConversations(w, r, wild)
}

// ChatPost serves POST /chat/conversations/{conversation}/messages.
func (h *Handlers) ChatPost(w http.ResponseWriter, r *http.Request) {
	wild := chi.URLParam(r, "*")
	name, ok := strings.CutSuffix(wild, "/messages")
	if !ok {
		respondDetail(w, http.StatusNotFound, "unknown chat endpoint")
		return
	}
	h.sendMessage(w, r, name)
}

// listConversations lists every conversation visible in the project and
// filters client-side to the requested agent. The membership rule is
// deliberately loose (see conversationMatchesAgent); upstream permission or
// not-found errors degrade to an empty list so the UI keeps working for
// agents without visible history.
func (h *Handlers) listConversations(w http.ResponseWriter, r *http.Request, agentName string) {
	hc := h.flow.Client(r.Context(), middleware.Token(r.Context()))

	convos, err := h.data.ListConversations(r.Context(), hc, h.parent())
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) || geminidata.IsPermissionDenied(err) {
			log.Debug().Err(err).Str("agent", agentName).Msg("conversation listing soft-failed")
			respondJSON(w, http.StatusOK, map[string]any{"conversations": []models.ConversationResponse{}})
			return
		}
		respondError(w, err)
		return
	}

	response := make([]models.ConversationResponse, 0)
	for _, convo := range convos {
		if !conversationMatchesAgent(agentName, convo.Agents) {
			continue
		}
		response = append(response, toConversationResponse(convo))
	}
	respondJSON(w, http.StatusOK, map[string]any{"conversations": response})
}

// CreateConversation creates a conversation scoped to exactly one agent.
func (h *Handlers) CreateConversation(w http.ResponseWriter, r *http.Request) {
	agentName := r.URL.Query().Get("agent_name")
	if agentName == "" {
		respondDetail(w, http.StatusBadRequest, "agent_name is required")
		return
	}

	hc := h.flow.Client(r.Context(), middleware.Token(r.Context()))
	created, err := h.data.CreateConversation(r.Context(), hc, h.parent(), &geminidata.Conversation{
		Agents: []string{agentName},
	})
	if err != nil {
		respondError(w, err)
		return
	}

	log.Info().Str("conversation", created.Name).Str("agent", agentName).Msg("conversation created")
	respondJSON(w, http.StatusOK, map[string]any{"conversation": toConversationResponse(*created)})
}

// listMessages returns the stored history of a conversation, normalized and
// sorted ascending by timestamp. Messages that fail to decode are dropped,
// not fatal.
func (h *Handlers) listMessages(w http.ResponseWriter, r *http.Request, conversationName string) {
	hc := h.flow.Client(r.Context(), middleware.Token(r.Context()))

	stored, err := h.data.ListMessages(r.Context(), hc, conversationName)
	if err != nil {
		respondError(w, err)
		return
	}

	envelopes := make([]models.Envelope, 0, len(stored))
	for _, wrapper := range stored {
		if wrapper.Message == nil {
			log.Debug().Str("message_id", wrapper.MessageID).Msg("dropping undecodable message")
			continue
		}
		envelopes = append(envelopes, normalize.Message(wrapper.Message))
	}
	normalize.SortEnvelopes(envelopes)

	respondJSON(w, http.StatusOK, map[string]any{"messages": envelopes})
}

// sendMessage issues the streaming chat call and forwards one normalized
// envelope per upstream chunk as a line of newline-delimited JSON.
func (h *Handlers) sendMessage(w http.ResponseWriter, r *http.Request, conversationName string) {
	agentName := r.URL.Query().Get("agent_name")
	if agentName == "" {
		respondDetail(w, http.StatusBadRequest, "agent_name is required")
		return
	}

	var req models.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		respondDetail(w, http.StatusBadRequest, "text is required")
		return
	}

	hc := h.flow.Client(r.Context(), middleware.Token(r.Context()))

	// Resolve the agent first: Looker-backed agents need the semantic-layer
	// client pair attached so the service can reach the explore.
	agent, err := h.data.GetDataAgent(r.Context(), hc, agentName)
	if err != nil {
		respondError(w, err)
		return
	}

	convoRef := &geminidata.ConversationReference{
		Conversation: conversationName,
		DataAgentContext: &geminidata.DataAgentContext{
			DataAgent: agentName,
		},
	}
	if agent.IsLooker() {
		convoRef.DataAgentContext.Credentials = &geminidata.Credentials{
			OAuth: &geminidata.OAuthCredentials{
				Secret: &geminidata.OAuthSecret{
					ClientID:     h.cfg.Looker.ClientID,
					ClientSecret: h.cfg.Looker.ClientSecret,
				},
			},
		}
	}

	chatReq := &geminidata.ChatRequest{
		Parent:                h.parent(),
		Messages:              []geminidata.Message{{UserMessage: &geminidata.UserMessage{Text: req.Text}}},
		ConversationReference: convoRef,
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondDetail(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	enc := json.NewEncoder(w)
	err = h.data.Chat(r.Context(), hc, chatReq, func(msg *geminidata.Message) error {
		if err := enc.Encode(normalize.Message(msg)); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		// Headers are committed; the error rides the stream as its final
		// line and already-sent output stands.
		log.Warn().Err(err).Str("conversation", conversationName).Msg("chat stream failed")
		enc.Encode(map[string]string{"error": err.Error()})
		flusher.Flush()
	}
}

// conversationMatchesAgent implements the membership rule: an exact member
// of the agents set, or the trailing path segment of the queried agent
// appearing as a substring of any member. The fallback exists because the
// service has returned agent identities in inconsistent formats; keep it
// confined here and do not extend it.
func conversationMatchesAgent(agentName string, agents []string) bool {
	for _, a := range agents {
		if a == agentName {
			return true
		}
	}
	tail := agentName
	if i := strings.LastIndex(agentName, "/"); i >= 0 {
		tail = agentName[i+1:]
	}
	for _, a := range agents {
		if strings.Contains(a, tail) {
			return true
		}
	}
	return false
}

func toConversationResponse(convo geminidata.Conversation) models.ConversationResponse {
	agents := convo.Agents
	if agents == nil {
		agents = []string{}
	}
	return models.ConversationResponse{
		Name:         convo.Name,
		CreateTime:   optional(convo.CreateTime),
		LastUsedTime: optional(convo.LastUsedTime),
		Agents:       agents,
	}
}
