package handlers

import (
	"encoding/json"
	"net/http"

	"token-vault/internal/credentials"
)

// ListPlatforms returns the connection snapshot for every platform the
// authenticated user has connected.
func (h *Handlers) ListPlatforms(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}

	infos, err := h.manager.ListConfigInfo(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if infos == nil {
		infos = []*credentials.ConfigInfo{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"platforms": infos})
}

// GetStatus returns the connection snapshot for one platform, or 404 when
// the user never connected it.
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	platform, ok := requestPlatform(w, r)
	if !ok {
		return
	}

	info, err := h.manager.GetConfigInfo(r.Context(), userID, platform)
	if err != nil {
		writeError(w, err)
		return
	}
	if info == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "platform not connected"})
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// GetToken returns an access token believed valid, or 404 when none can be
// produced.
func (h *Handlers) GetToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	platform, ok := requestPlatform(w, r)
	if !ok {
		return
	}

	token, ok := h.manager.GetValidToken(r.Context(), userID, platform)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no valid token available"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"platform":     string(platform),
		"access_token": token,
	})
}

// SaveConfig stores the credential delivered by an OAuth callback.
func (h *Handlers) SaveConfig(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	platform, ok := requestPlatform(w, r)
	if !ok {
		return
	}

	var input credentials.SaveInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.manager.SaveConfig(r.Context(), userID, platform, &input); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"platform": string(platform),
		"status":   "saved",
	})
}

// RemoveConfig disconnects the platform. Removing an unconnected platform
// succeeds.
func (h *Handlers) RemoveConfig(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestUser(w, r)
	if !ok {
		return
	}
	platform, ok := requestPlatform(w, r)
	if !ok {
		return
	}

	if err := h.manager.RemoveConfig(r.Context(), userID, platform); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"platform": string(platform),
		"status":   "removed",
	})
}
