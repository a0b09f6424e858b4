package v1

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/confluxhq/conflux"
	"github.com/confluxhq/conflux/domain/rag"
	"github.com/confluxhq/conflux/infrastructure/api/middleware"
)

// SettingsRouter handles provider setting API endpoints.
type SettingsRouter struct {
	client *conflux.Client
	logger *slog.Logger
}

// NewSettingsRouter creates a SettingsRouter.
func NewSettingsRouter(client *conflux.Client) *SettingsRouter {
	return &SettingsRouter{client: client, logger: client.Logger()}
}

// Routes returns the chi router for setting endpoints.
func (r *SettingsRouter) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", r.List)
	router.Post("/", r.Create)
	router.Get("/{id}", r.Get)
	router.Put("/{id}", r.Update)
	router.Delete("/{id}", r.Delete)
	router.Post("/{id}/activate", r.Activate)
	return router
}

type settingRequest struct {
	ProviderName       string `json:"provider_name"`
	APIKey             string `json:"api_key,omitempty"`
	BaseURL            string `json:"base_url,omitempty"`
	ModelName          string `json:"model_name,omitempty"`
	AdditionalSettings string `json:"additional_settings,omitempty"`
}

// settingResponse never echoes the API key back to clients.
type settingResponse struct {
	ID           int64     `json:"id"`
	ProviderName string    `json:"provider_name"`
	BaseURL      string    `json:"base_url,omitempty"`
	ModelName    string    `json:"model_name,omitempty"`
	IsActive     bool      `json:"is_active"`
	HasAPIKey    bool      `json:"has_api_key"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func settingToResponse(s rag.ProviderSetting) settingResponse {
	return settingResponse{
		ID:           s.ID(),
		ProviderName: s.ProviderName(),
		BaseURL:      s.BaseURL(),
		ModelName:    s.ModelName(),
		IsActive:     s.IsActive(),
		HasAPIKey:    s.APIKey() != "",
		CreatedAt:    s.CreatedAt(),
		UpdatedAt:    s.UpdatedAt(),
	}
}

// List handles GET /api/v1/settings.
func (r *SettingsRouter) List(w http.ResponseWriter, req *http.Request) {
	settings, err := r.client.Providers.ListSettings(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	resp := make([]settingResponse, len(settings))
	for i, s := range settings {
		resp[i] = settingToResponse(s)
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/v1/settings.
func (r *SettingsRouter) Create(w http.ResponseWriter, req *http.Request) {
	params, err := decodeSettingParams(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	setting, err := r.client.Providers.CreateSetting(req.Context(), params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, settingToResponse(setting))
}

// Get handles GET /api/v1/settings/{id}.
func (r *SettingsRouter) Get(w http.ResponseWriter, req *http.Request) {
	id, err := settingID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	setting, err := r.client.Providers.GetSetting(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, settingToResponse(setting))
}

// Update handles PUT /api/v1/settings/{id}.
func (r *SettingsRouter) Update(w http.ResponseWriter, req *http.Request) {
	id, err := settingID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	params, err := decodeSettingParams(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	setting, err := r.client.Providers.UpdateSetting(req.Context(), id, params)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, settingToResponse(setting))
}

// Delete handles DELETE /api/v1/settings/{id}.
func (r *SettingsRouter) Delete(w http.ResponseWriter, req *http.Request) {
	id, err := settingID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	deleted, err := r.client.Providers.DeleteSetting(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	if !deleted {
		middleware.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "setting not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Activate handles POST /api/v1/settings/{id}/activate.
func (r *SettingsRouter) Activate(w http.ResponseWriter, req *http.Request) {
	id, err := settingID(req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}

	setting, err := r.client.Providers.ActivateProvider(req.Context(), id)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, settingToResponse(setting))
}

func settingID(req *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid setting id", middleware.ErrBadRequest)
	}
	return id, nil
}

func decodeSettingParams(req *http.Request) (rag.SettingParams, error) {
	var body settingRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return rag.SettingParams{}, fmt.Errorf("%w: %s", middleware.ErrBadRequest, err)
	}
	if body.ProviderName == "" {
		return rag.SettingParams{}, fmt.Errorf("%w: provider_name is required", middleware.ErrBadRequest)
	}
	return rag.SettingParams{
		ProviderName:       body.ProviderName,
		APIKey:             body.APIKey,
		BaseURL:            body.BaseURL,
		ModelName:          body.ModelName,
		AdditionalSettings: body.AdditionalSettings,
	}, nil
}
