package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dataqna/backend/internal/api/middleware"
	"github.com/dataqna/backend/internal/apperr"
	"github.com/dataqna/backend/internal/geminidata"
	"github.com/dataqna/backend/pkg/models"
)

// ListAgents lists every data agent under the configured project. One
// malformed agent must not fail the whole listing: bad entries are logged
// and skipped.
func (h *Handlers) ListAgents(w http.ResponseWriter, r *http.Request) {
	hc := h.flow.Client(r.Context(), middleware.Token(r.Context()))

	agents, err := h.data.ListDataAgents(r.Context(), hc, h.parent())
	if err != nil {
		respondError(w, err)
		return
	}

	response := make([]models.AgentResponse, 0, len(agents))
	for _, agent := range agents {
		resp, ok := toAgentResponse(agent)
		if !ok {
			log.Error().Str("agent", agent.Name).Msg("skipping malformed agent in listing")
			continue
		}
		response = append(response, resp)
	}
	respondJSON(w, http.StatusOK, map[string]any{"agents": response})
}

// CreateAgent validates the datasource triple for the chosen kind, builds
// the agent with a fresh id and waits for the create operation to resolve.
func (h *Handlers) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	refs, err := datasourceReferences(&req)
	if err != nil {
		respondError(w, err)
		return
	}

	// Leading letter keeps the generated id valid as a resource name.
	agentID := "a" + uuid.New().String()
	agent := &geminidata.DataAgent{
		Name:        h.parent() + "/dataAgents/" + agentID,
		DisplayName: req.DisplayName,
		Description: req.Description,
		DataAnalyticsAgent: &geminidata.DataAnalyticsAgent{
			PublishedContext: &geminidata.Context{
				SystemInstruction:    req.SystemInstruction,
				DatasourceReferences: refs,
			},
		},
	}

	hc := h.flow.Client(r.Context(), middleware.Token(r.Context()))
	created, err := h.data.CreateDataAgent(r.Context(), hc, h.parent(), agentID, agent)
	if err != nil {
		respondError(w, err)
		return
	}

	log.Info().Str("agent", created.Name).Str("display_name", created.DisplayName).Msg("agent created")
	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Agent '" + req.DisplayName + "' successfully created",
		"agent": models.AgentSummary{
			Name:        created.Name,
			DisplayName: created.DisplayName,
			Description: created.Description,
		},
	})
}

// UpdateAgent replaces display name, description and system instruction.
// The datasource binding of the stored agent is carried forward untouched.
func (h *Handlers) UpdateAgent(w http.ResponseWriter, r *http.Request) {
	agentName := chi.URLParam(r, "*")
	if agentName == "" {
		respondDetail(w, http.StatusBadRequest, "agent name is required")
		return
	}

	var req models.UpdateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hc := h.flow.Client(r.Context(), middleware.Token(r.Context()))
	existing, err := h.data.GetDataAgent(r.Context(), hc, agentName)
	if err != nil {
		respondError(w, err)
		return
	}

	agent := &geminidata.DataAgent{
		Name:        agentName,
		DisplayName: req.DisplayName,
		Description: req.Description,
		DataAnalyticsAgent: &geminidata.DataAnalyticsAgent{
			PublishedContext: &geminidata.Context{
				SystemInstruction:    req.SystemInstruction,
				DatasourceReferences: existing.PublishedContext().DatasourceReferences,
			},
		},
	}

	updated, err := h.data.UpdateDataAgent(r.Context(), hc, agent)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Agent successfully updated",
		"agent": models.AgentSummary{
			Name:        updated.Name,
			DisplayName: updated.DisplayName,
			Description: updated.Description,
		},
	})
}

// DeleteAgent deletes by the resource name reassembled from path segments.
func (h *Handlers) DeleteAgent(w http.ResponseWriter, r *http.Request) {
	name := "projects/" + chi.URLParam(r, "projectID") +
		"/locations/" + chi.URLParam(r, "location") +
		"/dataAgents/" + chi.URLParam(r, "agentID")

	hc := h.flow.Client(r.Context(), middleware.Token(r.Context()))
	if err := h.data.DeleteDataAgent(r.Context(), hc, name); err != nil {
		respondError(w, err)
		return
	}

	log.Info().Str("agent", name).Msg("agent deleted")
	respondJSON(w, http.StatusOK, map[string]string{"message": "Agent successfully deleted"})
}

// datasourceReferences enforces the exactly-one-datasource invariant: the
// discriminator picks a kind, and that kind's triple must be complete.
func datasourceReferences(req *models.CreateAgentRequest) (*geminidata.DatasourceReferences, error) {
	switch req.DataSource {
	case "BigQuery":
		if req.BQProjectID == "" || req.BQDatasetID == "" || req.BQTableID == "" {
			return nil, apperr.InvalidArgument("BigQuery project_id, dataset_id, and table_id are required")
		}
		return &geminidata.DatasourceReferences{
			BQ: &geminidata.BigQueryTableReferences{
				TableReferences: []geminidata.BigQueryTableReference{{
					ProjectID: req.BQProjectID,
					DatasetID: req.BQDatasetID,
					TableID:   req.BQTableID,
				}},
			},
		}, nil
	case "Looker":
		if req.LookerInstanceURL == "" || req.LookerModel == "" || req.LookerExplore == "" {
			return nil, apperr.InvalidArgument("Looker instance URL, model, and explore are required")
		}
		return &geminidata.DatasourceReferences{
			Looker: &geminidata.LookerExploreReferences{
				ExploreReferences: []geminidata.LookerExploreReference{{
					LookerInstanceURI: req.LookerInstanceURL,
					LookmlModel:       req.LookerModel,
					Explore:           req.LookerExplore,
				}},
			},
		}, nil
	default:
		return nil, apperr.InvalidArgument("Invalid data source. Must be 'BigQuery' or 'Looker'")
	}
}

// toAgentResponse flattens the nested published context into the listing
// shape. ok is false for entries too malformed to present.
func toAgentResponse(agent geminidata.DataAgent) (models.AgentResponse, bool) {
	if agent.Name == "" {
		return models.AgentResponse{}, false
	}
	ctx := agent.PublishedContext()
	return models.AgentResponse{
		Name:                 agent.Name,
		DisplayName:          agent.DisplayName,
		Description:          agent.Description,
		CreateTime:           optional(agent.CreateTime),
		UpdateTime:           optional(agent.UpdateTime),
		SystemInstruction:    ctx.SystemInstruction,
		DatasourceReferences: ctx.DatasourceReferences,
	}, true
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
