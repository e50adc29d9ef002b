// internal/handler/campaign_handler.go
package handler

import (
    "encoding/json"
    "log"
    "net/http"
    "strconv"

    "github.com/go-chi/chi/v5"

    appErrors "github.com/umutalparslan/push-notification-system/internal/errors"
    "github.com/umutalparslan/push-notification-system/internal/model"
    "github.com/umutalparslan/push-notification-system/internal/service"
)

// CampaignHandler holds the dependencies for campaign-related HTTP handlers
type CampaignHandler struct {
    Service *service.CampaignService
}

func (h *CampaignHandler) CreateCampaign(w http.ResponseWriter, r *http.Request) {
    var body struct {
        Title          string             `json:"title"`
        Message        string             `json:"message"`
        ApplicationIDs []int64            `json:"application_ids"`
        SegmentQuery   model.SegmentQuery `json:"segment_query"`
        ScheduledAt    *string            `json:"scheduled_at"`
    }
    if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
        writeError(w, http.StatusBadRequest, "invalid body")
        return
    }

    campaign, err := h.Service.CreateCampaign(r.Context(), customerID(r), service.CreateCampaignInput{
        Title:          body.Title,
        Message:        body.Message,
        ApplicationIDs: body.ApplicationIDs,
        SegmentQuery:   body.SegmentQuery,
        ScheduledAt:    body.ScheduledAt,
    })
    if err != nil {
        writeServiceError(w, err)
        return
    }

    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(campaign)
}

func (h *CampaignHandler) ListCampaigns(w http.ResponseWriter, r *http.Request) {
    campaigns, err := h.Service.ListCampaigns(r.Context(), customerID(r))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    json.NewEncoder(w).Encode(campaigns)
}

func (h *CampaignHandler) GetCampaign(w http.ResponseWriter, r *http.Request) {
    id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

    campaign, err := h.Service.GetCampaign(r.Context(), id, customerID(r))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    json.NewEncoder(w).Encode(campaign)
}

func (h *CampaignHandler) SendCampaign(w http.ResponseWriter, r *http.Request) {
    id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

    campaign, err := h.Service.SendCampaign(r.Context(), id, customerID(r))
    if err != nil {
        writeServiceError(w, err)
        return
    }

    json.NewEncoder(w).Encode(map[string]any{
        "message":  "Campaign queued for sending",
        "campaign": campaign,
    })
}

func (h *CampaignHandler) GetReport(w http.ResponseWriter, r *http.Request) {
    id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)

    report, err := h.Service.Report(r.Context(), id, customerID(r))
    if err != nil {
        writeServiceError(w, err)
        return
    }
    json.NewEncoder(w).Encode(report)
}

// customerID reads the authenticated customer from the X-Customer-ID header.
// Real authentication lives in front of this service.
func customerID(r *http.Request) int64 {
    id, _ := strconv.ParseInt(r.Header.Get("X-Customer-ID"), 10, 64)
    return id
}

func writeError(w http.ResponseWriter, code int, msg string) {
    w.WriteHeader(code)
    json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeServiceError(w http.ResponseWriter, err error) {
    switch {
    case appErrors.IsValidation(err):
        writeError(w, http.StatusBadRequest, err.Error())
    case appErrors.IsNotFound(err):
        writeError(w, http.StatusNotFound, err.Error())
    default:
        log.Println("⚠️ internal error:", err)
        writeError(w, http.StatusInternalServerError, "internal server error")
    }
}
