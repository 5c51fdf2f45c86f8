// Package api exposes HTTP handlers for the lockout service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"example.com/lockout/internal/auth"
	"example.com/lockout/internal/domain"
	"example.com/lockout/internal/persistence"
)

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service *domain.Service
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/activities", h.activities)
	mux.HandleFunc("/v1/activities/", h.activitySubtree)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) activities(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createActivity(w, r)
	case http.MethodGet:
		h.listActivities(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

// activitySubtree dispatches everything under /v1/activities/{id}. The
// hierarchy paths mirror the aggregate: energy-owners/{id}/supervisors/{id}/workers/{id}.
func (h *Handler) activitySubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/activities/")
	segments := strings.Split(strings.Trim(rest, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing activity id")
		return
	}
	activityID := segments[0]
	segments = segments[1:]

	if len(segments) == 0 {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
			return
		}
		h.getActivity(w, r, activityID)
		return
	}

	switch segments[0] {
	case "zero-energy":
		h.route(w, r, segments, 1, routes{post: func() { h.validateZeroEnergy(w, r, activityID) }})
	case "equipment":
		if len(segments) == 1 {
			h.route(w, r, segments, 1, routes{post: func() { h.addEquipment(w, r, activityID) }})
			return
		}
		h.route(w, r, segments, 2, routes{delete: func() { h.removeEquipment(w, r, activityID, segments[1]) }})
	case "energy-owners":
		h.energyOwners(w, r, activityID, segments[1:])
	case "force-detach":
		h.route(w, r, segments, 1, routes{post: func() { h.forceDetach(w, r, activityID) }})
	case "locker":
		h.route(w, r, segments, 1, routes{
			post:   func() { h.assignLocker(w, r, activityID) },
			delete: func() { h.releaseLocker(w, r, activityID) },
		})
	case "owner-replacement":
		if len(segments) == 2 && segments[1] == "confirm" {
			h.route(w, r, segments, 2, routes{post: func() { h.confirmOwnerReplacement(w, r, activityID) }})
			return
		}
		h.route(w, r, segments, 1, routes{post: func() { h.proposeOwnerReplacement(w, r, activityID) }})
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

func (h *Handler) energyOwners(w http.ResponseWriter, r *http.Request, activityID string, segments []string) {
	switch len(segments) {
	case 0:
		h.route(w, r, segments, 0, routes{post: func() { h.assignEnergyOwner(w, r, activityID) }})
	case 1:
		h.route(w, r, segments, 1, routes{delete: func() { h.detachEnergyOwner(w, r, activityID, segments[0]) }})
	case 2:
		if segments[1] != "supervisors" {
			writeError(w, http.StatusNotFound, "not_found", "unknown resource")
			return
		}
		h.route(w, r, segments, 2, routes{post: func() { h.assignSupervisor(w, r, activityID, segments[0]) }})
	case 3:
		if segments[1] != "supervisors" {
			writeError(w, http.StatusNotFound, "not_found", "unknown resource")
			return
		}
		h.route(w, r, segments, 3, routes{delete: func() { h.detachSupervisor(w, r, activityID, segments[0], segments[2]) }})
	case 4:
		if segments[1] != "supervisors" || segments[3] != "workers" {
			writeError(w, http.StatusNotFound, "not_found", "unknown resource")
			return
		}
		h.route(w, r, segments, 4, routes{post: func() { h.assignWorker(w, r, activityID, segments[0], segments[2]) }})
	case 5:
		if segments[1] != "supervisors" || segments[3] != "workers" {
			writeError(w, http.StatusNotFound, "not_found", "unknown resource")
			return
		}
		h.route(w, r, segments, 5, routes{delete: func() { h.detachWorker(w, r, activityID, segments[0], segments[2], segments[4]) }})
	default:
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
	}
}

type routes struct {
	post   func()
	delete func()
}

func (h *Handler) route(w http.ResponseWriter, r *http.Request, segments []string, wantLen int, rt routes) {
	if len(segments) != wantLen {
		writeError(w, http.StatusNotFound, "not_found", "unknown resource")
		return
	}
	switch {
	case r.Method == http.MethodPost && rt.post != nil:
		rt.post()
	case r.Method == http.MethodDelete && rt.delete != nil:
		rt.delete()
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}

	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activity, err := h.service.CreateActivity(r.Context(), domain.CreateActivityInput{
		Name:          req.Name,
		Description:   req.Description,
		BlockType:     req.BlockType,
		EquipmentRefs: req.EquipmentRefs,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, MutationResponse{Activity: toActivityView(*activity)})
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request, id string) {
	if !requireScope(w, r, auth.ScopeLockoutRead, auth.ScopeLockoutWrite) {
		return
	}

	activity, err := h.service.GetActivity(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*activity))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	if !requireScope(w, r, auth.ScopeLockoutRead, auth.ScopeLockoutWrite) {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	activities, next, err := h.service.ListActivities(r.Context(), cursor, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	items := make([]ActivityView, 0, len(activities))
	for _, activity := range activities {
		items = append(items, toActivityView(activity))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) validateZeroEnergy(w http.ResponseWriter, r *http.Request, activityID string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}

	var req ZeroEnergyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	outcome, err := h.service.ValidateZeroEnergy(r.Context(), activityID, req.ValidatorName, req.InstrumentUsed, req.EnergyValue)
	h.respond(w, outcome, err)
}

func (h *Handler) addEquipment(w http.ResponseWriter, r *http.Request, activityID string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}

	var req EquipmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.Ref) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "ref is required")
		return
	}

	outcome, err := h.service.AddEquipment(r.Context(), activityID, req.Ref)
	h.respond(w, outcome, err)
}

func (h *Handler) removeEquipment(w http.ResponseWriter, r *http.Request, activityID, ref string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}
	outcome, err := h.service.RemoveEquipment(r.Context(), activityID, ref)
	h.respond(w, outcome, err)
}

func (h *Handler) assignEnergyOwner(w http.ResponseWriter, r *http.Request, activityID string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}
	userID, ok := decodeUserID(w, r)
	if !ok {
		return
	}
	outcome, err := h.service.AssignEnergyOwner(r.Context(), activityID, userID)
	h.respond(w, outcome, err)
}

func (h *Handler) detachEnergyOwner(w http.ResponseWriter, r *http.Request, activityID, ownerID string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}
	outcome, err := h.service.DetachEnergyOwner(r.Context(), activityID, ownerID)
	h.respond(w, outcome, err)
}

func (h *Handler) assignSupervisor(w http.ResponseWriter, r *http.Request, activityID, ownerID string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}
	userID, ok := decodeUserID(w, r)
	if !ok {
		return
	}
	outcome, err := h.service.AssignSupervisor(r.Context(), activityID, ownerID, userID)
	h.respond(w, outcome, err)
}

func (h *Handler) detachSupervisor(w http.ResponseWriter, r *http.Request, activityID, ownerID, supervisorID string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}
	outcome, err := h.service.DetachSupervisor(r.Context(), activityID, ownerID, supervisorID)
	h.respond(w, outcome, err)
}

func (h *Handler) assignWorker(w http.ResponseWriter, r *http.Request, activityID, ownerID, supervisorID string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}
	userID, ok := decodeUserID(w, r)
	if !ok {
		return
	}
	outcome, err := h.service.AssignWorker(r.Context(), activityID, ownerID, supervisorID, userID)
	h.respond(w, outcome, err)
}

func (h *Handler) detachWorker(w http.ResponseWriter, r *http.Request, activityID, ownerID, supervisorID, workerID string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}
	outcome, err := h.service.DetachWorker(r.Context(), activityID, ownerID, supervisorID, workerID)
	h.respond(w, outcome, err)
}

func (h *Handler) forceDetach(w http.ResponseWriter, r *http.Request, activityID string) {
	if !requireScope(w, r, auth.ScopeLockoutForce) {
		return
	}

	var req ForceDetachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	outcome, err := h.service.ForceDetach(r.Context(), activityID, domain.RuptureInput{
		SubjectType:       domain.SubjectType(req.SubjectType),
		SubjectUserID:     req.SubjectUserID,
		Reason:            req.Reason,
		ValidatorID:       req.ValidatorID,
		ChosenOptionIndex: req.ChosenOptionIndex,
		OptionDetails:     req.OptionDetails,
		CheckedSubOptions: req.CheckedSubOptions,
	})
	h.respond(w, outcome, err)
}

func (h *Handler) assignLocker(w http.ResponseWriter, r *http.Request, activityID string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}

	var req LockerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.LockerID) == "" || strings.TrimSpace(req.TotemID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "locker_id and totem_id are required")
		return
	}

	outcome, err := h.service.AssignLocker(r.Context(), activityID, req.LockerID, req.TotemID)
	h.respond(w, outcome, err)
}

func (h *Handler) releaseLocker(w http.ResponseWriter, r *http.Request, activityID string) {
	if !requireScope(w, r, auth.ScopeLockoutWrite) {
		return
	}
	outcome, err := h.service.ReleaseLocker(r.Context(), activityID)
	h.respond(w, outcome, err)
}

func (h *Handler) proposeOwnerReplacement(w http.ResponseWriter, r *http.Request, activityID string) {
	if !requireScope(w, r, auth.ScopeLockoutForce) {
		return
	}

	var req OwnerReplacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.CandidateID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "candidate_id is required")
		return
	}

	outcome, err := h.service.ProposeOwnerReplacement(r.Context(), activityID, req.CandidateID)
	h.respond(w, outcome, err)
}

func (h *Handler) confirmOwnerReplacement(w http.ResponseWriter, r *http.Request, activityID string) {
	if !requireScope(w, r, auth.ScopeLockoutForce) {
		return
	}

	var req ConfirmOwnerReplacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.CurrentOwnerID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "current_owner_id is required")
		return
	}

	outcome, err := h.service.ConfirmOwnerReplacement(r.Context(), activityID, req.CurrentOwnerID)
	h.respond(w, outcome, err)
}

// respond renders a mutation outcome or maps the domain error to a status.
func (h *Handler) respond(w http.ResponseWriter, outcome *domain.Outcome, err error) {
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MutationResponse{
		Activity: toActivityView(*outcome.Activity),
		Warnings: outcome.Warnings,
	})
}

func requireScope(w http.ResponseWriter, r *http.Request, anyOf ...string) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	for _, scope := range anyOf {
		if claims.HasScope(scope) {
			return true
		}
	}
	writeError(w, http.StatusForbidden, "forbidden", "scope "+strings.Join(anyOf, " or ")+" required")
	return false
}

func decodeUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req AssignUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return "", false
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "user_id is required")
		return "", false
	}
	return req.UserID, true
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case domain.KindInvalidRole:
		writeError(w, http.StatusUnprocessableEntity, "invalid_role", err.Error())
	case domain.KindConflict:
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case domain.KindDependencyExists:
		writeError(w, http.StatusConflict, "dependency_exists", err.Error())
	case domain.KindPreconditionFailed:
		writeError(w, http.StatusPreconditionFailed, "precondition_failed", err.Error())
	case domain.KindExternal:
		writeError(w, http.StatusBadGateway, "external_collaborator", err.Error())
	default:
		if errors.Is(err, domain.ErrActivityNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

// CreateActivityRequest is the payload for POST /v1/activities.
type CreateActivityRequest struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	BlockType     string   `json:"block_type"`
	EquipmentRefs []string `json:"equipment_refs"`
}

// Validate ensures request correctness.
func (r CreateActivityRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return errors.New("description is required")
	}
	if strings.TrimSpace(r.BlockType) == "" {
		return errors.New("block_type is required")
	}
	return nil
}

// ZeroEnergyRequest records proof of de-energization.
type ZeroEnergyRequest struct {
	ValidatorName  string `json:"validator_name"`
	InstrumentUsed string `json:"instrument_used"`
	EnergyValue    string `json:"energy_value"`
}

// Validate ensures request correctness.
func (r ZeroEnergyRequest) Validate() error {
	if strings.TrimSpace(r.ValidatorName) == "" {
		return errors.New("validator_name is required")
	}
	if strings.TrimSpace(r.InstrumentUsed) == "" {
		return errors.New("instrument_used is required")
	}
	if strings.TrimSpace(r.EnergyValue) == "" {
		return errors.New("energy_value is required")
	}
	return nil
}

// EquipmentRequest attaches one equipment reference.
type EquipmentRequest struct {
	Ref string `json:"ref"`
}

// AssignUserRequest attaches one person to the hierarchy.
type AssignUserRequest struct {
	UserID string `json:"user_id"`
}

// ForceDetachRequest authorizes an out-of-order removal.
type ForceDetachRequest struct {
	SubjectType       string   `json:"subject_type"`
	SubjectUserID     string   `json:"subject_user_id"`
	Reason            string   `json:"reason"`
	ValidatorID       string   `json:"validator_id"`
	ChosenOptionIndex int      `json:"chosen_option_index"`
	OptionDetails     string   `json:"option_details"`
	CheckedSubOptions []string `json:"checked_sub_options"`
}

// Validate ensures request correctness.
func (r ForceDetachRequest) Validate() error {
	switch domain.SubjectType(r.SubjectType) {
	case domain.SubjectEnergyOwner, domain.SubjectSupervisor, domain.SubjectWorker:
	default:
		return errors.New("subject_type must be owner, supervisor or worker")
	}
	if strings.TrimSpace(r.SubjectUserID) == "" {
		return errors.New("subject_user_id is required")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return errors.New("reason is required")
	}
	if strings.TrimSpace(r.ValidatorID) == "" {
		return errors.New("validator_id is required")
	}
	return nil
}

// LockerRequest binds the activity to a physical locker.
type LockerRequest struct {
	LockerID string `json:"locker_id"`
	TotemID  string `json:"totem_id"`
}

// OwnerReplacementRequest proposes a candidate for the owner handshake.
type OwnerReplacementRequest struct {
	CandidateID string `json:"candidate_id"`
}

// ConfirmOwnerReplacementRequest completes the owner handshake.
type ConfirmOwnerReplacementRequest struct {
	CurrentOwnerID string `json:"current_owner_id"`
}

// SupervisorView mirrors one supervisor node.
type SupervisorView struct {
	UserID    string   `json:"user_id"`
	IsBlocked bool     `json:"is_blocked"`
	Workers   []string `json:"workers"`
}

// EnergyOwnerView mirrors one energy owner node with its subtree.
type EnergyOwnerView struct {
	UserID      string           `json:"user_id"`
	IsBlocked   bool             `json:"is_blocked"`
	Supervisors []SupervisorView `json:"supervisors"`
}

// ActivityView exposes the full activity document.
type ActivityView struct {
	ActivityID       string                       `json:"activity_id"`
	SequenceNumber   int64                        `json:"sequence_number"`
	Name             string                       `json:"name"`
	Description      string                       `json:"description"`
	BlockType        string                       `json:"block_type"`
	Status           string                       `json:"status"`
	IsBlocked        bool                         `json:"is_blocked"`
	EquipmentRefs    []string                     `json:"equipment_refs"`
	ZeroEnergy       *domain.ZeroEnergyValidation `json:"zero_energy_validation,omitempty"`
	EnergyOwners     []EnergyOwnerView            `json:"energy_owners"`
	AssignedLocker   []domain.LockerBinding       `json:"assigned_locker"`
	Ruptures         []domain.RuptureRecord       `json:"ruptures"`
	PendingOwnerSwap string                       `json:"pending_new_owner_candidate,omitempty"`
	FinishedAt       *time.Time                   `json:"finished_at,omitempty"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

// MutationResponse packages the updated snapshot with best-effort warnings.
type MutationResponse struct {
	Activity ActivityView `json:"activity"`
	Warnings []string     `json:"warnings,omitempty"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toActivityView(activity domain.Activity) ActivityView {
	owners := make([]EnergyOwnerView, 0, len(activity.EnergyOwners))
	for _, owner := range activity.EnergyOwners {
		supervisors := make([]SupervisorView, 0, len(owner.Supervisors))
		for _, sup := range owner.Supervisors {
			workers := sup.Workers
			if workers == nil {
				workers = []string{}
			}
			supervisors = append(supervisors, SupervisorView{
				UserID:    sup.UserID,
				IsBlocked: sup.IsBlocked,
				Workers:   workers,
			})
		}
		owners = append(owners, EnergyOwnerView{
			UserID:      owner.UserID,
			IsBlocked:   owner.IsBlocked,
			Supervisors: supervisors,
		})
	}

	refs := activity.EquipmentRefs
	if refs == nil {
		refs = []string{}
	}
	lockers := activity.AssignedLocker
	if lockers == nil {
		lockers = []domain.LockerBinding{}
	}
	ruptures := activity.Ruptures
	if ruptures == nil {
		ruptures = []domain.RuptureRecord{}
	}

	return ActivityView{
		ActivityID:       activity.ID,
		SequenceNumber:   activity.SequenceNumber,
		Name:             activity.Name,
		Description:      activity.Description,
		BlockType:        activity.BlockType,
		Status:           string(activity.Status),
		IsBlocked:        activity.IsBlocked,
		EquipmentRefs:    refs,
		ZeroEnergy:       activity.ZeroEnergy,
		EnergyOwners:     owners,
		AssignedLocker:   lockers,
		Ruptures:         ruptures,
		PendingOwnerSwap: activity.PendingOwnerSwap,
		FinishedAt:       activity.FinishedAt,
		CreatedAt:        activity.CreatedAt,
		UpdatedAt:        activity.UpdatedAt,
	}
}
