package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/openlearn-labs/channelsync-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns readiness, verifying database, queue and lock backends
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backend is unavailable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "task queue unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Channel registry

// ChannelsResponse lists the channel codes this deployment can talk to
// @Description Supported channel codes
type ChannelsResponse struct {
	Channels []domain.ChannelCode `json:"channels"`
}

// handleListChannels godoc
// @Summary      List supported channels
// @Description  Returns the channel codes with a registered adapter
// @Tags         Channels
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ChannelsResponse
// @Router       /channels [get]
func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ChannelsResponse{Channels: s.channelFactory.SupportedChannels()})
}

// Configuration endpoints

// handleListConfigurations godoc
// @Summary      List channel configurations
// @Description  Lists a customer's channel configurations. Admins may pass ?customer=; other callers see their own customer.
// @Tags         Configurations
// @Produce      json
// @Security     BearerAuth
// @Param        customer  query     string  false  "Customer ID (admin only)"
// @Success      200       {array}   domain.ConfigurationSummary
// @Failure      403       {object}  ErrorResponse  "Caller may not access the customer"
// @Router       /configurations [get]
func (s *Server) handleListConfigurations(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	customerID := r.URL.Query().Get("customer")
	if customerID == "" {
		customerID = authCtx.CustomerID
	}
	if !authCtx.CanAccessCustomer(customerID) {
		writeError(w, http.StatusForbidden, "access to customer denied")
		return
	}

	summaries, err := s.configService.ListConfigurations(r.Context(), customerID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list configurations")
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// handleGetConfiguration godoc
// @Summary      Get a channel configuration
// @Tags         Configurations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Configuration ID"
// @Success      200  {object}  domain.ChannelConfiguration
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /configurations/{id} [get]
func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	config, err := s.configService.GetConfiguration(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "configuration not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get configuration")
		return
	}
	if !authCtx.CanAccessCustomer(config.CustomerID) {
		writeError(w, http.StatusForbidden, "access to customer denied")
		return
	}

	writeJSON(w, http.StatusOK, config)
}

// handleChannelHealth godoc
// @Summary      Check channel health
// @Description  Probes the configuration's channel without syncing. Expected failure modes come back as a status, not an error.
// @Tags         Configurations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Configuration ID"
// @Success      200  {object}  domain.HealthCheckResult
// @Failure      404  {object}  ErrorResponse
// @Router       /configurations/{id}/health [get]
func (s *Server) handleChannelHealth(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	id := r.PathValue("id")

	config, err := s.configService.GetConfiguration(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "configuration not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get configuration")
		return
	}
	if !authCtx.CanAccessCustomer(config.CustomerID) {
		writeError(w, http.StatusForbidden, "access to customer denied")
		return
	}

	result, err := s.healthChecker.Check(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "health check failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// TriggerSyncRequest optionally restricts the run to specific unit types
// @Description Sync trigger request
type TriggerSyncRequest struct {
	UnitTypes []domain.UnitType `json:"unit_types,omitempty"`
}

// TriggerSyncResponse returns the enqueued task for polling
// @Description Sync trigger response
type TriggerSyncResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// handleTriggerSync godoc
// @Summary      Trigger a sync run
// @Description  Enqueues a transmitter run for the configuration. Duplicate triggers are safe.
// @Tags         Configurations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string              true   "Configuration ID"
// @Param        request  body      TriggerSyncRequest  false  "Unit type filter"
// @Success      202      {object}  TriggerSyncResponse
// @Failure      400      {object}  ErrorResponse  "Invalid unit type or inactive configuration"
// @Failure      403      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /configurations/{id}/sync [post]
func (s *Server) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	var req TriggerSyncRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	for _, ut := range req.UnitTypes {
		if ut != domain.UnitTypeContentMetadata && ut != domain.UnitTypeLearnerData {
			writeError(w, http.StatusBadRequest, "unknown unit type")
			return
		}
	}

	task, err := s.configService.TriggerSync(r.Context(), authCtx, r.PathValue("id"), req.UnitTypes)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeError(w, http.StatusNotFound, "configuration not found")
		case errors.Is(err, domain.ErrForbidden):
			writeError(w, http.StatusForbidden, "access to customer denied")
		case errors.Is(err, domain.ErrInvalidConfiguration):
			writeError(w, http.StatusBadRequest, "configuration is inactive")
		default:
			writeError(w, http.StatusInternalServerError, "failed to trigger sync")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, TriggerSyncResponse{
		TaskID: task.ID,
		Status: string(task.Status),
	})
}

// handleGetRunStatus godoc
// @Summary      Poll a sync run
// @Tags         Runs
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task ID"
// @Success      200  {object}  domain.Task
// @Failure      404  {object}  ErrorResponse
// @Router       /runs/{id} [get]
func (s *Server) handleGetRunStatus(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())

	task, err := s.configService.GetRunStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get run status")
		return
	}
	if task == nil || !authCtx.CanAccessCustomer(task.CustomerID) {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Response helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
