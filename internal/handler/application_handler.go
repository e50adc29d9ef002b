// internal/handler/application_handler.go
package handler

import (
    "encoding/json"
    "net/http"

    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/repository"
)

type ApplicationHandler struct {
    Repo repository.ApplicationRepositoryInterface
}

var validPlatforms = map[string]bool{
    model.PlatformIOS:     true,
    model.PlatformAndroid: true,
    model.PlatformWeb:     true,
}

// credential types accepted per platform, mirroring what the dispatchers
// can actually drive.
var validCredentials = map[string]map[string]bool{
    model.PlatformAndroid: {model.CredentialFCM: true},
    model.PlatformIOS:     {model.CredentialP8: true, model.CredentialP12: true},
    model.PlatformWeb:     {model.CredentialVAPID: true, model.CredentialP12: true},
}

func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
    var body struct {
        Name        string          `json:"name"`
        Platform    string          `json:"platform"`
        Credentials json.RawMessage `json:"credentials"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        writeError(w, http.StatusBadRequest, "invalid body")
        return
    }
    if body.Name == "" || body.Platform == "" || len(body.Credentials) == 0 {
        writeError(w, http.StatusBadRequest, "name, platform and credentials are required")
        return
    }
    if !validPlatforms[body.Platform] {
        writeError(w, http.StatusBadRequest, "invalid platform")
        return
    }

    app := &model.Application{
        CustomerID:  customerID(r),
        Name:        body.Name,
        Platform:    body.Platform,
        Credentials: body.Credentials,
    }
    creds, err := app.ParseCredentials()
    if err != nil || !validCredentials[body.Platform][creds.Type] {
        writeError(w, http.StatusBadRequest, "invalid credentials format")
        return
    }

    if err := h.Repo.Create(r.Context(), app); err != nil {
        writeServiceError(w, err)
        return
    }

    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(app)
}

func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
    apps, err := h.Repo.ListByCustomer(r.Context(), customerID(r))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    json.NewEncoder(w).Encode(apps)
}
