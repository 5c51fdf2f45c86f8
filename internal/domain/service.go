// Package domain implements the lockout state machine for energy-isolation
// activities: the owner/supervisor/worker hierarchy, the locker binding rules
// and the rupture audit trail.
package domain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"example.com/lockout/internal/events"
)

// maxUpdateRetries bounds the optimistic-concurrency retry loop. Two writers
// racing on the same activity is the expected case; more suggests a hot loop.
const maxUpdateRetries = 3

// sequenceCounter names the shared counter backing activity numbers.
const sequenceCounter = "activities"

// Event is a domain occurrence persisted transactionally with the aggregate
// write and later delivered by the outbox dispatcher.
type Event struct {
	Type    string
	Payload interface{}
}

// Cursor models the pagination token for activity listings.
type Cursor struct {
	SequenceNumber int64
	ID             string
}

// ActivityRepository captures persistence operations. Update must
// compare-and-swap on Activity.Version and return ErrVersionConflict when the
// stored version moved underneath the caller.
type ActivityRepository interface {
	Create(ctx context.Context, activity Activity) error
	Get(ctx context.Context, activityID string) (*Activity, error)
	List(ctx context.Context, cursor *Cursor, limit int) ([]Activity, *Cursor, error)
	Update(ctx context.Context, activity Activity, evts []Event) error
	NextSequence(ctx context.Context, counterName string) (int64, error)
}

// RoleResolver is the identity provider consulted before attaching a person.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (Role, error)
}

// LockerRegistry owns physical locker state. Calls are best-effort relative to
// the activity write; the aggregate's assigned_locker field is authoritative.
type LockerRegistry interface {
	Occupy(ctx context.Context, lockerID, activityID string, equipmentRefs []string) error
	Release(ctx context.Context, lockerID string) error
	Available(ctx context.Context, lockerID string) (bool, error)
}

// EquipmentRegistry answers existence checks for equipment references.
type EquipmentRegistry interface {
	Exists(ctx context.Context, ref string) (bool, error)
}

// LockerSyncFailureFn is invoked whenever a best-effort locker registry call
// fails, so the caller can count the drift for out-of-band reconciliation.
type LockerSyncFailureFn func(op string)

// Service orchestrates every lockout workflow mutation.
type Service struct {
	repo        ActivityRepository
	roles       RoleResolver
	lockers     LockerRegistry
	equipment   EquipmentRegistry
	onLockerOut LockerSyncFailureFn
}

// NewService constructs a Service.
func NewService(repo ActivityRepository, roles RoleResolver, lockers LockerRegistry, equipment EquipmentRegistry, onLockerSyncFailure LockerSyncFailureFn) *Service {
	if onLockerSyncFailure == nil {
		onLockerSyncFailure = func(string) {}
	}
	return &Service{repo: repo, roles: roles, lockers: lockers, equipment: equipment, onLockerOut: onLockerSyncFailure}
}

// Outcome bundles the updated snapshot with warnings from best-effort side
// effects (locker registry sync).
type Outcome struct {
	Activity *Activity
	Warnings []string
}

// CreateActivityInput captures the payload from the API layer.
type CreateActivityInput struct {
	Name          string
	Description   string
	BlockType     string
	EquipmentRefs []string
}

// RuptureInput describes an authorized out-of-order removal.
type RuptureInput struct {
	SubjectType       SubjectType
	SubjectUserID     string
	Reason            string
	ValidatorID       string
	ChosenOptionIndex int
	OptionDetails     string
	CheckedSubOptions []string
}

// CreateActivity registers a new lockout activity in pending state with a
// freshly allocated sequence number.
func (s *Service) CreateActivity(ctx context.Context, input CreateActivityInput) (*Activity, error) {
	refs := make([]string, 0, len(input.EquipmentRefs))
	for _, ref := range input.EquipmentRefs {
		if err := s.checkEquipmentExists(ctx, ref); err != nil {
			return nil, err
		}
		duplicate := false
		for _, existing := range refs {
			if existing == ref {
				duplicate = true
				break
			}
		}
		if !duplicate {
			refs = append(refs, ref)
		}
	}

	seq, err := s.repo.NextSequence(ctx, sequenceCounter)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	activity := Activity{
		ID:             uuid.NewString(),
		SequenceNumber: seq,
		Name:           input.Name,
		Description:    input.Description,
		BlockType:      input.BlockType,
		Status:         ActivityStatusPending,
		EquipmentRefs:  refs,
		CreatedAt:      now,
		UpdatedAt:      now,
		Version:        1,
	}

	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// GetActivity fetches one activity with its full hierarchy.
func (s *Service) GetActivity(ctx context.Context, activityID string) (*Activity, error) {
	return s.load(ctx, activityID)
}

// ListActivities pages through activities by descending sequence number.
func (s *Service) ListActivities(ctx context.Context, cursor *Cursor, limit int) ([]Activity, *Cursor, error) {
	return s.repo.List(ctx, cursor, limit)
}

// ValidateZeroEnergy records the zero-energy proof for an activity. The
// equipment set must be non-empty: there is nothing to prove de-energized
// otherwise.
func (s *Service) ValidateZeroEnergy(ctx context.Context, activityID, validatorName, instrument, value string) (*Outcome, error) {
	return s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		if len(a.EquipmentRefs) == 0 {
			return nil, NewError(KindPreconditionFailed, "cannot validate zero energy without equipment")
		}
		a.ZeroEnergy = &ZeroEnergyValidation{
			ValidatorName:  validatorName,
			InstrumentUsed: instrument,
			EnergyValue:    value,
			ValidatedAt:    time.Now().UTC(),
		}
		return nil, nil
	})
}

// AddEquipment attaches an equipment reference after checking it exists in the
// external registry.
func (s *Service) AddEquipment(ctx context.Context, activityID, ref string) (*Outcome, error) {
	if err := s.checkEquipmentExists(ctx, ref); err != nil {
		return nil, err
	}
	return s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		if a.HasEquipment(ref) {
			return nil, NewError(KindConflict, "equipment %s already attached", ref)
		}
		a.EquipmentRefs = append(a.EquipmentRefs, ref)
		return nil, nil
	})
}

// RemoveEquipment detaches an equipment reference. Equipment cannot be pulled
// from a live lockout.
func (s *Service) RemoveEquipment(ctx context.Context, activityID, ref string) (*Outcome, error) {
	return s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		if a.Status == ActivityStatusActive {
			return nil, NewError(KindPreconditionFailed, "cannot remove equipment while activity is active")
		}
		for i, existing := range a.EquipmentRefs {
			if existing == ref {
				a.EquipmentRefs = append(a.EquipmentRefs[:i], a.EquipmentRefs[i+1:]...)
				return nil, nil
			}
		}
		return nil, NewError(KindNotFound, "equipment %s not attached", ref)
	})
}

// AssignEnergyOwner attaches an energy owner. The first owner requires a
// non-empty equipment set and a recorded zero-energy validation, and moves the
// activity into the active (blocked) state.
func (s *Service) AssignEnergyOwner(ctx context.Context, activityID, userID string) (*Outcome, error) {
	if err := s.requireRole(ctx, userID, RoleEnergyOwner); err != nil {
		return nil, err
	}
	return s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		if a.ownerIndex(userID) >= 0 {
			return nil, NewError(KindConflict, "user %s is already an energy owner", userID)
		}
		if len(a.EnergyOwners) == 0 {
			if len(a.EquipmentRefs) == 0 {
				return nil, NewError(KindPreconditionFailed, "cannot lock an activity without equipment")
			}
			if a.ZeroEnergy == nil {
				return nil, NewError(KindPreconditionFailed, "cannot lock an activity without zero-energy validation")
			}
		}

		activated := a.Status != ActivityStatusActive
		a.EnergyOwners = append(a.EnergyOwners, EnergyOwnerNode{UserID: userID, IsBlocked: true})
		a.Status = ActivityStatusActive
		a.IsBlocked = true

		if activated {
			return []Event{stateChangedEvent(a, "energy owner attached")}, nil
		}
		return nil, nil
	})
}

// AssignSupervisor attaches a supervisor under the named energy owner.
func (s *Service) AssignSupervisor(ctx context.Context, activityID, energyOwnerID, userID string) (*Outcome, error) {
	if err := s.requireRole(ctx, userID, RoleSupervisor); err != nil {
		return nil, err
	}
	return s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		oi := a.ownerIndex(energyOwnerID)
		if oi < 0 {
			return nil, NewError(KindNotFound, "energy owner %s not found", energyOwnerID)
		}
		owner := &a.EnergyOwners[oi]
		if owner.supervisorIndex(userID) >= 0 {
			return nil, NewError(KindConflict, "user %s is already a supervisor under %s", userID, energyOwnerID)
		}
		owner.Supervisors = append(owner.Supervisors, SupervisorNode{UserID: userID, IsBlocked: true})
		return nil, nil
	})
}

// AssignWorker attaches a worker under the named supervisor.
func (s *Service) AssignWorker(ctx context.Context, activityID, energyOwnerID, supervisorID, userID string) (*Outcome, error) {
	return s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		sup, err := a.findSupervisor(energyOwnerID, supervisorID)
		if err != nil {
			return nil, err
		}
		if sup.workerIndex(userID) >= 0 {
			return nil, NewError(KindConflict, "user %s is already a worker under %s", userID, supervisorID)
		}
		sup.Workers = append(sup.Workers, userID)
		return nil, nil
	})
}

// DetachWorker removes a worker. Workers are leaves, so removal is always
// permitted.
func (s *Service) DetachWorker(ctx context.Context, activityID, energyOwnerID, supervisorID, userID string) (*Outcome, error) {
	return s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		sup, err := a.findSupervisor(energyOwnerID, supervisorID)
		if err != nil {
			return nil, err
		}
		wi := sup.workerIndex(userID)
		if wi < 0 {
			return nil, NewError(KindNotFound, "worker %s not found under supervisor %s", userID, supervisorID)
		}
		sup.Workers = append(sup.Workers[:wi], sup.Workers[wi+1:]...)
		return nil, nil
	})
}

// DetachSupervisor removes a supervisor, which is only legal once every worker
// under them has been detached.
func (s *Service) DetachSupervisor(ctx context.Context, activityID, energyOwnerID, supervisorID string) (*Outcome, error) {
	return s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		oi := a.ownerIndex(energyOwnerID)
		if oi < 0 {
			return nil, NewError(KindNotFound, "energy owner %s not found", energyOwnerID)
		}
		owner := &a.EnergyOwners[oi]
		si := owner.supervisorIndex(supervisorID)
		if si < 0 {
			return nil, NewError(KindNotFound, "supervisor %s not found under owner %s", supervisorID, energyOwnerID)
		}
		if len(owner.Supervisors[si].Workers) > 0 {
			return nil, NewError(KindDependencyExists, "supervisor %s still has %d workers attached", supervisorID, len(owner.Supervisors[si].Workers))
		}
		owner.Supervisors = append(owner.Supervisors[:si], owner.Supervisors[si+1:]...)
		return nil, nil
	})
}

// DetachEnergyOwner removes an energy owner, which is only legal once every
// supervisor under them has been detached. Removing the last owner finalizes
// the activity and releases any assigned locker.
func (s *Service) DetachEnergyOwner(ctx context.Context, activityID, energyOwnerID string) (*Outcome, error) {
	var releasedLocker string
	outcome, err := s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		releasedLocker = ""
		oi := a.ownerIndex(energyOwnerID)
		if oi < 0 {
			return nil, NewError(KindNotFound, "energy owner %s not found", energyOwnerID)
		}
		if len(a.EnergyOwners[oi].Supervisors) > 0 {
			return nil, NewError(KindDependencyExists, "energy owner %s still has %d supervisors attached", energyOwnerID, len(a.EnergyOwners[oi].Supervisors))
		}
		a.EnergyOwners = append(a.EnergyOwners[:oi], a.EnergyOwners[oi+1:]...)
		if len(a.EnergyOwners) > 0 {
			return nil, nil
		}
		releasedLocker = s.clearLockerBinding(a)
		a.finalize(time.Now().UTC())
		return []Event{stateChangedEvent(a, "last energy owner detached")}, nil
	})
	if err != nil {
		return nil, err
	}
	s.releaseLockerBestEffort(ctx, outcome, releasedLocker)
	return outcome, nil
}

// ForceDetach removes a participant out of the normal leaf-first order. The
// removal always appends a rupture record; a forced owner or supervisor
// removal takes its whole subtree with it.
func (s *Service) ForceDetach(ctx context.Context, activityID string, input RuptureInput) (*Outcome, error) {
	var releasedLocker string
	outcome, err := s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		releasedLocker = ""
		if err := a.removeSubject(input.SubjectType, input.SubjectUserID); err != nil {
			return nil, err
		}

		record := RuptureRecord{
			Reason:            input.Reason,
			OccurredAt:        time.Now().UTC(),
			ValidatorID:       input.ValidatorID,
			ChosenOptionIndex: input.ChosenOptionIndex,
			OptionDetails:     input.OptionDetails,
			CheckedSubOptions: input.CheckedSubOptions,
			SubjectType:       input.SubjectType,
			SubjectUserID:     input.SubjectUserID,
		}
		a.Ruptures = append(a.Ruptures, record)

		evts := []Event{{
			Type: events.TypeRuptureRecorded,
			Payload: events.RuptureRecorded{
				ActivityID:    a.ID,
				SubjectType:   string(record.SubjectType),
				SubjectUserID: record.SubjectUserID,
				Reason:        record.Reason,
				ValidatorID:   record.ValidatorID,
				OccurredAt:    record.OccurredAt,
			},
		}}

		if a.Status != ActivityStatusFinalized && len(a.EnergyOwners) == 0 && input.SubjectType == SubjectEnergyOwner {
			releasedLocker = s.clearLockerBinding(a)
			a.finalize(time.Now().UTC())
			evts = append(evts, stateChangedEvent(a, "last energy owner force-detached"))
		}
		return evts, nil
	})
	if err != nil {
		return nil, err
	}
	s.releaseLockerBestEffort(ctx, outcome, releasedLocker)
	return outcome, nil
}

// AssignLocker binds the activity to a physical locker. At most one locker may
// be bound at a time. The registry's view is consulted first: an affirmative
// occupied/maintenance answer rejects the binding, a registry outage does not.
func (s *Service) AssignLocker(ctx context.Context, activityID, lockerID, totemID string) (*Outcome, error) {
	if free, err := s.lockers.Available(ctx, lockerID); err != nil {
		log.Printf("lockout: locker registry status check failed for locker %s: %v", lockerID, err)
	} else if !free {
		return nil, NewError(KindConflict, "locker %s is not available", lockerID)
	}

	outcome, err := s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		if a.HasLocker() {
			return nil, NewError(KindConflict, "activity already has locker %s assigned", a.AssignedLocker[0].LockerID)
		}
		a.AssignedLocker = append(a.AssignedLocker, LockerBinding{
			LockerID:   lockerID,
			TotemID:    totemID,
			AssignedAt: time.Now().UTC(),
		})
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.lockers.Occupy(ctx, lockerID, activityID, outcome.Activity.EquipmentRefs); err != nil {
		log.Printf("lockout: locker registry occupy failed for locker %s: %v", lockerID, err)
		s.onLockerOut("occupy")
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("locker registry occupy failed for locker %s: %v", lockerID, err))
	}
	return outcome, nil
}

// ReleaseLocker clears the locker binding on demand.
func (s *Service) ReleaseLocker(ctx context.Context, activityID string) (*Outcome, error) {
	var releasedLocker string
	outcome, err := s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		if !a.HasLocker() {
			return nil, NewError(KindNotFound, "no locker assigned to activity")
		}
		releasedLocker = s.clearLockerBinding(a)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	s.releaseLockerBestEffort(ctx, outcome, releasedLocker)
	return outcome, nil
}

// ProposeOwnerReplacement records a candidate for an owner handshake after
// validating their role.
func (s *Service) ProposeOwnerReplacement(ctx context.Context, activityID, candidateID string) (*Outcome, error) {
	if err := s.requireRole(ctx, candidateID, RoleEnergyOwner); err != nil {
		return nil, err
	}
	return s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		if a.ownerIndex(candidateID) >= 0 {
			return nil, NewError(KindConflict, "user %s is already an energy owner", candidateID)
		}
		a.PendingOwnerSwap = candidateID
		return nil, nil
	})
}

// ConfirmOwnerReplacement swaps the named owner for the pending candidate,
// keeping the owner's supervisor subtree intact.
func (s *Service) ConfirmOwnerReplacement(ctx context.Context, activityID, currentOwnerID string) (*Outcome, error) {
	return s.mutate(ctx, activityID, func(a *Activity) ([]Event, error) {
		if a.PendingOwnerSwap == "" {
			return nil, NewError(KindPreconditionFailed, "no pending owner replacement candidate")
		}
		oi := a.ownerIndex(currentOwnerID)
		if oi < 0 {
			return nil, NewError(KindNotFound, "energy owner %s not found", currentOwnerID)
		}
		if a.ownerIndex(a.PendingOwnerSwap) >= 0 {
			return nil, NewError(KindConflict, "user %s is already an energy owner", a.PendingOwnerSwap)
		}
		a.EnergyOwners[oi].UserID = a.PendingOwnerSwap
		a.PendingOwnerSwap = ""
		return nil, nil
	})
}

// mutate runs one atomic read-validate-write cycle with bounded retries on
// version conflicts. The apply callback must leave the aggregate untouched
// when it returns an error.
func (s *Service) mutate(ctx context.Context, activityID string, apply func(*Activity) ([]Event, error)) (*Outcome, error) {
	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		activity, err := s.load(ctx, activityID)
		if err != nil {
			return nil, err
		}
		// Finalized is terminal. Equipment refs and the zero-energy record
		// survive finalization, so without this guard a fresh owner could
		// pass the first-owner gates and reopen the activity.
		if activity.Status == ActivityStatusFinalized {
			return nil, NewError(KindPreconditionFailed, "activity %s is finalized", activityID)
		}

		activity.UpdatedAt = time.Now().UTC()
		evts, err := apply(activity)
		if err != nil {
			return nil, err
		}

		if err := s.repo.Update(ctx, *activity, evts); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				continue
			}
			return nil, err
		}
		activity.Version++
		return &Outcome{Activity: activity}, nil
	}
	return nil, NewError(KindConflict, "activity %s is being modified concurrently, retry", activityID)
}

func (s *Service) load(ctx context.Context, activityID string) (*Activity, error) {
	activity, err := s.repo.Get(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

func (s *Service) requireRole(ctx context.Context, userID string, want Role) error {
	role, err := s.roles.ResolveRole(ctx, userID)
	if err != nil {
		return WrapExternal("identity provider unavailable", err)
	}
	if role != want {
		return NewError(KindInvalidRole, "user %s has role %s, expected %s", userID, role, want)
	}
	return nil
}

func (s *Service) checkEquipmentExists(ctx context.Context, ref string) error {
	exists, err := s.equipment.Exists(ctx, ref)
	if err != nil {
		return WrapExternal("equipment registry unavailable", err)
	}
	if !exists {
		return NewError(KindNotFound, "equipment %s does not exist", ref)
	}
	return nil
}

// clearLockerBinding empties the binding and reports the locker id that was
// bound, if any.
func (s *Service) clearLockerBinding(a *Activity) string {
	if !a.HasLocker() {
		return ""
	}
	lockerID := a.AssignedLocker[0].LockerID
	a.AssignedLocker = nil
	return lockerID
}

// releaseLockerBestEffort tells the registry a locker is free again. The
// activity write has already committed; a registry failure only yields a
// warning.
func (s *Service) releaseLockerBestEffort(ctx context.Context, outcome *Outcome, lockerID string) {
	if lockerID == "" {
		return
	}
	if err := s.lockers.Release(ctx, lockerID); err != nil {
		log.Printf("lockout: locker registry release failed for locker %s: %v", lockerID, err)
		s.onLockerOut("release")
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("locker registry release failed for locker %s: %v", lockerID, err))
	}
}

// findSupervisor resolves the supervisor node addressed by the owner and
// supervisor ids, returning a pointer into the aggregate.
func (a *Activity) findSupervisor(energyOwnerID, supervisorID string) (*SupervisorNode, error) {
	oi := a.ownerIndex(energyOwnerID)
	if oi < 0 {
		return nil, NewError(KindNotFound, "energy owner %s not found", energyOwnerID)
	}
	owner := &a.EnergyOwners[oi]
	si := owner.supervisorIndex(supervisorID)
	if si < 0 {
		return nil, NewError(KindNotFound, "supervisor %s not found under owner %s", supervisorID, energyOwnerID)
	}
	return &owner.Supervisors[si], nil
}

// removeSubject deletes a participant anywhere in the hierarchy by id,
// regardless of children. Used only by ForceDetach.
func (a *Activity) removeSubject(subjectType SubjectType, subjectID string) error {
	switch subjectType {
	case SubjectEnergyOwner:
		oi := a.ownerIndex(subjectID)
		if oi < 0 {
			return NewError(KindNotFound, "energy owner %s not found", subjectID)
		}
		a.EnergyOwners = append(a.EnergyOwners[:oi], a.EnergyOwners[oi+1:]...)
		return nil
	case SubjectSupervisor:
		for oi := range a.EnergyOwners {
			owner := &a.EnergyOwners[oi]
			if si := owner.supervisorIndex(subjectID); si >= 0 {
				owner.Supervisors = append(owner.Supervisors[:si], owner.Supervisors[si+1:]...)
				return nil
			}
		}
		return NewError(KindNotFound, "supervisor %s not found", subjectID)
	case SubjectWorker:
		for oi := range a.EnergyOwners {
			owner := &a.EnergyOwners[oi]
			for si := range owner.Supervisors {
				sup := &owner.Supervisors[si]
				if wi := sup.workerIndex(subjectID); wi >= 0 {
					sup.Workers = append(sup.Workers[:wi], sup.Workers[wi+1:]...)
					return nil
				}
			}
		}
		return NewError(KindNotFound, "worker %s not found", subjectID)
	default:
		return NewError(KindNotFound, "unknown subject type %s", subjectType)
	}
}

func stateChangedEvent(a *Activity, reason string) Event {
	return Event{
		Type: events.TypeStateChanged,
		Payload: events.StateChanged{
			ActivityID: a.ID,
			Status:     string(a.Status),
			IsBlocked:  a.IsBlocked,
			OccurredAt: a.UpdatedAt,
			Reason:     reason,
		},
	}
}
