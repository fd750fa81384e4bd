package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/RespawnQueue_Go/internal/coordinator"
	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/event"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
	"github.com/osse101/RespawnQueue_Go/internal/respawn"
	"github.com/osse101/RespawnQueue_Go/internal/roster"
)

// ClaimSettingsBody is the admin view of claim timings, in whole minutes
type ClaimSettingsBody struct {
	GuildMinutes          int `json:"claim_duration_guild_minutes" validate:"required,gt=0,max=1440"`
	NeutroMinutes         int `json:"claim_duration_neutro_minutes" validate:"required,gt=0,max=1440"`
	PriorityWindowMinutes int `json:"priority_window_minutes" validate:"required,gt=0,max=120"`
}

func settingsBody(s domain.ClaimSettings) ClaimSettingsBody {
	return ClaimSettingsBody{
		GuildMinutes:          int(s.GuildDuration / time.Minute),
		NeutroMinutes:         int(s.NeutroDuration / time.Minute),
		PriorityWindowMinutes: int(s.PriorityWindow / time.Minute),
	}
}

func (b ClaimSettingsBody) settings() domain.ClaimSettings {
	return domain.ClaimSettings{
		GuildDuration:  time.Duration(b.GuildMinutes) * time.Minute,
		NeutroDuration: time.Duration(b.NeutroMinutes) * time.Minute,
		PriorityWindow: time.Duration(b.PriorityWindowMinutes) * time.Minute,
	}
}

// AdminHandler serves guild administration: settings, registry, roster,
// announcements and manual housekeeping
type AdminHandler struct {
	coord    coordinator.Service
	respawns respawn.Service
	roster   roster.Service
	bus      event.Bus
}

// NewAdminHandler creates an admin handler
func NewAdminHandler(coord coordinator.Service, respawns respawn.Service, rosterSvc roster.Service, bus event.Bus) *AdminHandler {
	return &AdminHandler{coord: coord, respawns: respawns, roster: rosterSvc, bus: bus}
}

// HandleGetSettings returns the effective claim timings
// @Summary Get claim settings
// @Tags admin
// @Produce json
// @Success 200 {object} ClaimSettingsBody
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/settings [get]
func (h *AdminHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, settingsBody(h.coord.ClaimSettings(r.Context())))
}

// HandleUpdateSettings stores new claim timings
// @Summary Update claim settings
// @Tags admin
// @Accept json
// @Produce json
// @Param request body ClaimSettingsBody true "Timings in minutes"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ValidationErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/settings [put]
func (h *AdminHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req ClaimSettingsBody
	if err := DecodeAndValidateRequest(r, w, &req, "Update settings"); err != nil {
		return
	}
	if err := h.coord.UpdateClaimSettings(r.Context(), req.settings()); err != nil {
		respondServiceError(w, r, "update settings", err)
		return
	}
	respondJSON(w, http.StatusOK, DataResponse{Message: MsgSettingsUpdated, Data: req})
}

// HandleCreateRespawn registers a respawn
// @Summary Create respawn
// @Tags admin
// @Accept json
// @Produce json
// @Param request body respawn.CreateRespawnRequest true "Respawn"
// @Success 201 {object} domain.Respawn
// @Failure 409 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/respawns [post]
func (h *AdminHandler) HandleCreateRespawn(w http.ResponseWriter, r *http.Request) {
	var req respawn.CreateRespawnRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Create respawn"); err != nil {
		return
	}
	created, err := h.respawns.CreateRespawn(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, "create respawn", err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// HandleDeleteRespawn archives a respawn without an active claim
// @Summary Delete respawn
// @Tags admin
// @Produce json
// @Param id path int true "Respawn ID"
// @Success 200 {object} SuccessResponse
// @Failure 409 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/respawns/{id} [delete]
func (h *AdminHandler) HandleDeleteRespawn(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.respawns.DeleteRespawn(r.Context(), id); err != nil {
		respondServiceError(w, r, "delete respawn", err)
		return
	}
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgRespawnDeleted})
}

// HandleListMembers lists the roster
// @Summary List members
// @Tags admin
// @Produce json
// @Success 200 {array} domain.Member
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/members [get]
func (h *AdminHandler) HandleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.roster.ListMembers(r.Context())
	if err != nil {
		respondServiceError(w, r, "list members", err)
		return
	}
	respondJSON(w, http.StatusOK, members)
}

// HandleRegisterMember adds a member to the roster
// @Summary Register member
// @Tags admin
// @Accept json
// @Produce json
// @Param request body roster.RegisterMemberRequest true "Member"
// @Success 201 {object} domain.Member
// @Failure 409 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/members [post]
func (h *AdminHandler) HandleRegisterMember(w http.ResponseWriter, r *http.Request) {
	var req roster.RegisterMemberRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Register member"); err != nil {
		return
	}
	member, err := h.roster.RegisterMember(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, "register member", err)
		return
	}
	respondJSON(w, http.StatusCreated, member)
}

// HandleUpdateMember changes a member's name, tier or admin flag
// @Summary Update member
// @Tags admin
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param request body roster.MemberUpdate true "Changes"
// @Success 200 {object} domain.Member
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/members/{userID} [patch]
func (h *AdminHandler) HandleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req roster.MemberUpdate
	if err := DecodeAndValidateRequest(r, w, &req, "Update member"); err != nil {
		return
	}
	member, err := h.roster.UpdateMember(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		respondServiceError(w, r, "update member", err)
		return
	}
	respondJSON(w, http.StatusOK, member)
}

// HandleAddMemberCharacter registers a character on behalf of a member
// @Summary Add member character
// @Tags admin
// @Accept json
// @Produce json
// @Param userID path string true "User ID"
// @Param request body roster.AddCharacterRequest true "Character"
// @Success 201 {object} domain.Character
// @Failure 404 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/members/{userID}/characters [post]
func (h *AdminHandler) HandleAddMemberCharacter(w http.ResponseWriter, r *http.Request) {
	var req roster.AddCharacterRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Add member character"); err != nil {
		return
	}
	char, err := h.roster.AddCharacter(r.Context(), chi.URLParam(r, "userID"), req)
	if err != nil {
		respondServiceError(w, r, "add member character", err)
		return
	}
	respondJSON(w, http.StatusCreated, char)
}

// HandleTicketCreated announces a new support ticket to the admins
// @Summary Publish ticket created
// @Tags admin
// @Accept json
// @Param request body domain.Ticket true "Ticket"
// @Success 202 {object} SuccessResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/events/ticket_created [post]
func (h *AdminHandler) HandleTicketCreated(w http.ResponseWriter, r *http.Request) {
	handlePublish(w, r, h.bus, "Publish ticket created", func(t domain.Ticket) event.Event {
		return event.NewTicketEvent(event.TicketCreated, t)
	})
}

// HandleTicketUpdated notifies a ticket owner of a status change
// @Summary Publish ticket updated
// @Tags admin
// @Accept json
// @Param request body domain.Ticket true "Ticket"
// @Success 202 {object} SuccessResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/events/ticket_updated [post]
func (h *AdminHandler) HandleTicketUpdated(w http.ResponseWriter, r *http.Request) {
	handlePublish(w, r, h.bus, "Publish ticket updated", func(t domain.Ticket) event.Event {
		return event.NewTicketEvent(event.TicketUpdated, t)
	})
}

// HandleHuntedOnline tells every member a hunted character logged in
// @Summary Publish hunted sighting
// @Tags admin
// @Accept json
// @Param request body domain.HuntedSighting true "Sighting"
// @Success 202 {object} SuccessResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/events/hunted_online [post]
func (h *AdminHandler) HandleHuntedOnline(w http.ResponseWriter, r *http.Request) {
	handlePublish(w, r, h.bus, "Publish hunted online", event.NewHuntedOnlineEvent)
}

// HandleSystemAlert broadcasts an announcement to every member
// @Summary Publish system alert
// @Tags admin
// @Accept json
// @Param request body domain.SystemAlert true "Alert"
// @Success 202 {object} SuccessResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/events/system_alert [post]
func (h *AdminHandler) HandleSystemAlert(w http.ResponseWriter, r *http.Request) {
	handlePublish(w, r, h.bus, "Publish system alert", event.NewSystemAlertEvent)
}

// HandleRunHousekeeping runs the expiry sweep and notification purge now
// @Summary Run housekeeping
// @Tags admin
// @Produce json
// @Success 200 {object} coordinator.HousekeepingReport
// @Failure 500 {object} ErrorResponse
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/housekeeping [post]
func (h *AdminHandler) HandleRunHousekeeping(w http.ResponseWriter, r *http.Request) {
	report, err := h.coord.RunHousekeeping(r.Context())
	if err != nil {
		respondServiceError(w, r, "housekeeping", err)
		return
	}
	respondJSON(w, http.StatusOK, DataResponse{Message: MsgHousekeepingQueued, Data: report})
}

// HandleCacheStats reports member cache effectiveness
// @Summary Member cache statistics
// @Tags admin
// @Produce json
// @Success 200 {object} roster.CacheStats
// @Security ApiKeyAuth
// @Security BearerAuth
// @Router /admin/cache/stats [get]
func (h *AdminHandler) HandleCacheStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.roster.CacheStats())
}

// handlePublish decodes and validates a payload, then publishes the event built from it
func handlePublish[T any](w http.ResponseWriter, r *http.Request, bus event.Bus, opName string, build func(T) event.Event) {
	var payload T
	if err := DecodeAndValidateRequest(r, w, &payload, opName); err != nil {
		return
	}

	evt := build(payload)
	if err := bus.Publish(r.Context(), evt); err != nil {
		logger.FromContext(r.Context()).Error(LogMsgPublishFailed, "type", evt.Type, "error", err)
		respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
		return
	}
	respondJSON(w, http.StatusAccepted, SuccessResponse{Message: MsgEventPublished})
}
