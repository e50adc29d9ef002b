// internal/handler/subscription_handler.go
package handler

import (
    "encoding/json"
    "net/http"

    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/repository"
)

// SubscriptionHandler is the external token-registration surface: device
// SDKs and service workers post their delivery addresses here. This is the
// write path that feeds the recipient resolver.
type SubscriptionHandler struct {
    Applications repository.ApplicationRepositoryInterface
    Tokens       repository.TokenRepositoryInterface
}

func (h *SubscriptionHandler) RegisterToken(w http.ResponseWriter, r *http.Request) {
    var body struct {
        ApplicationID int64  `json:"application_id"`
        UserID        int64  `json:"user_id"`
        DeviceToken   string `json:"device_token"`
        Platform      string `json:"platform"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        writeError(w, http.StatusBadRequest, "invalid body")
        return
    }
    if body.ApplicationID == 0 || body.UserID == 0 || body.DeviceToken == "" || body.Platform == "" {
        writeError(w, http.StatusBadRequest, "application_id, user_id, device_token and platform are required")
        return
    }
    if !validPlatforms[body.Platform] {
        writeError(w, http.StatusBadRequest, "invalid platform")
        return
    }
    // APNs tokens are 64 hex characters; catch obvious garbage early.
    if body.Platform == model.PlatformIOS && len(body.DeviceToken) != 64 {
        writeError(w, http.StatusBadRequest, "invalid device_token format for ios (must be 64 characters hexadecimal)")
        return
    }

    app, err := h.Applications.GetByID(r.Context(), body.ApplicationID)
    if err != nil {
        writeServiceError(w, err)
        return
    }
    if app == nil {
        writeError(w, http.StatusNotFound, "application not found")
        return
    }

    t := &model.RecipientToken{
        UserID:        body.UserID,
        ApplicationID: body.ApplicationID,
        DeviceToken:   body.DeviceToken,
        Platform:      body.Platform,
    }
    if err := h.Tokens.Create(r.Context(), t); err != nil {
        writeServiceError(w, err)
        return
    }

    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(map[string]any{
        "status":   "success",
        "message":  "Token added successfully",
        "token_id": t.ID,
    })
}
