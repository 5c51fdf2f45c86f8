package domain

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateActivityAllocatesSequenceNumbers(t *testing.T) {
	svc, env := newTestService(t)

	first, err := svc.CreateActivity(context.Background(), CreateActivityInput{
		Name: "Pump overhaul", Description: "Replace impeller", BlockType: "electrical",
	})
	require.NoError(t, err)
	second, err := svc.CreateActivity(context.Background(), CreateActivityInput{
		Name: "Valve swap", Description: "Replace gate valve", BlockType: "mechanical",
	})
	require.NoError(t, err)

	require.Equal(t, ActivityStatusPending, first.Status)
	require.False(t, first.IsBlocked)
	require.Greater(t, second.SequenceNumber, first.SequenceNumber)
	require.Len(t, env.repo.activities, 2)
}

func TestCreateActivityRejectsUnknownEquipment(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateActivity(context.Background(), CreateActivityInput{
		Name: "Pump overhaul", Description: "d", BlockType: "electrical",
		EquipmentRefs: []string{"EQ-404"},
	})
	require.Error(t, err)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestAssignEnergyOwnerWithoutEquipmentFails(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.createActivity(t, svc)
	env.roles.set("u1", RoleEnergyOwner)

	_, err := svc.AssignEnergyOwner(context.Background(), activity.ID, "u1")
	require.Error(t, err)
	require.Equal(t, KindPreconditionFailed, KindOf(err))
}

func TestActivationRequiresZeroEnergyValidation(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.createActivity(t, svc)
	env.roles.set("u1", RoleEnergyOwner)
	env.equipment.add("E1")

	_, err := svc.AddEquipment(context.Background(), activity.ID, "E1")
	require.NoError(t, err)

	_, err = svc.AssignEnergyOwner(context.Background(), activity.ID, "u1")
	require.Equal(t, KindPreconditionFailed, KindOf(err))

	outcome, err := svc.ValidateZeroEnergy(context.Background(), activity.ID, "Ana", "Multimeter", "0")
	require.NoError(t, err)
	require.NotNil(t, outcome.Activity.ZeroEnergy)
	require.Equal(t, "Ana", outcome.Activity.ZeroEnergy.ValidatorName)

	outcome, err = svc.AssignEnergyOwner(context.Background(), activity.ID, "u1")
	require.NoError(t, err)
	require.Equal(t, ActivityStatusActive, outcome.Activity.Status)
	require.True(t, outcome.Activity.IsBlocked)
	require.Len(t, outcome.Activity.EnergyOwners, 1)
}

func TestValidateZeroEnergyWithoutEquipmentFails(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.createActivity(t, svc)

	_, err := svc.ValidateZeroEnergy(context.Background(), activity.ID, "Ana", "Multimeter", "0")
	require.Equal(t, KindPreconditionFailed, KindOf(err))
}

func TestAssignEnergyOwnerRejectsWrongRole(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")
	env.roles.set("s1", RoleSupervisor)

	_, err := svc.AssignEnergyOwner(context.Background(), activity.ID, "s1")
	require.Equal(t, KindInvalidRole, KindOf(err))
}

func TestDuplicateAttachIsConflict(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")
	env.roles.set("s1", RoleSupervisor)

	_, err := svc.AssignEnergyOwner(context.Background(), activity.ID, "u1")
	require.Equal(t, KindConflict, KindOf(err))

	_, err = svc.AssignSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.NoError(t, err)
	_, err = svc.AssignSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.Equal(t, KindConflict, KindOf(err))

	_, err = svc.AssignWorker(context.Background(), activity.ID, "u1", "s1", "w1")
	require.NoError(t, err)
	_, err = svc.AssignWorker(context.Background(), activity.ID, "u1", "s1", "w1")
	require.Equal(t, KindConflict, KindOf(err))

	// Failed attaches must leave the hierarchy unchanged.
	current, err := svc.GetActivity(context.Background(), activity.ID)
	require.NoError(t, err)
	require.Len(t, current.EnergyOwners, 1)
	require.Len(t, current.EnergyOwners[0].Supervisors, 1)
	require.Len(t, current.EnergyOwners[0].Supervisors[0].Workers, 1)
}

func TestDetachSupervisorRequiresEmptyWorkers(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")
	env.roles.set("s1", RoleSupervisor)

	_, err := svc.AssignSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.NoError(t, err)
	_, err = svc.AssignWorker(context.Background(), activity.ID, "u1", "s1", "w1")
	require.NoError(t, err)

	_, err = svc.DetachSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.Equal(t, KindDependencyExists, KindOf(err))

	// The failed detach leaves the subtree intact.
	current, err := svc.GetActivity(context.Background(), activity.ID)
	require.NoError(t, err)
	require.Len(t, current.EnergyOwners[0].Supervisors, 1)

	_, err = svc.DetachWorker(context.Background(), activity.ID, "u1", "s1", "w1")
	require.NoError(t, err)
	outcome, err := svc.DetachSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.NoError(t, err)
	require.Empty(t, outcome.Activity.EnergyOwners[0].Supervisors)

	// Retrying the detach is a NotFound, not a silent no-op.
	_, err = svc.DetachSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestDetachEnergyOwnerRequiresEmptySupervisors(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")
	env.roles.set("s1", RoleSupervisor)

	_, err := svc.AssignSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.NoError(t, err)

	_, err = svc.DetachEnergyOwner(context.Background(), activity.ID, "u1")
	require.Equal(t, KindDependencyExists, KindOf(err))
}

func TestDetachLastEnergyOwnerFinalizesAndReleasesLocker(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")

	_, err := svc.AssignLocker(context.Background(), activity.ID, "L1", "T1")
	require.NoError(t, err)
	require.Equal(t, []string{"L1"}, env.lockers.occupied)

	outcome, err := svc.DetachEnergyOwner(context.Background(), activity.ID, "u1")
	require.NoError(t, err)
	require.Equal(t, ActivityStatusFinalized, outcome.Activity.Status)
	require.False(t, outcome.Activity.IsBlocked)
	require.Empty(t, outcome.Activity.EnergyOwners)
	require.Empty(t, outcome.Activity.AssignedLocker)
	require.NotNil(t, outcome.Activity.FinishedAt)
	require.Equal(t, []string{"L1"}, env.lockers.released)
	require.Empty(t, outcome.Warnings)
}

func TestLockerReleaseFailureSurfacesWarning(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")

	_, err := svc.AssignLocker(context.Background(), activity.ID, "L1", "T1")
	require.NoError(t, err)

	env.lockers.releaseErr = errors.New("registry down")
	outcome, err := svc.DetachEnergyOwner(context.Background(), activity.ID, "u1")
	require.NoError(t, err)

	// The activity write is authoritative: finalized and unbound even though
	// the registry call failed.
	require.Equal(t, ActivityStatusFinalized, outcome.Activity.Status)
	require.Empty(t, outcome.Activity.AssignedLocker)
	require.Len(t, outcome.Warnings, 1)
	require.Contains(t, outcome.Warnings[0], "registry down")
	require.Equal(t, []string{"release"}, env.lockerFailures)
}

func TestAssignLockerIsSingleBinding(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")

	_, err := svc.AssignLocker(context.Background(), activity.ID, "L1", "T1")
	require.NoError(t, err)
	_, err = svc.AssignLocker(context.Background(), activity.ID, "L2", "T1")
	require.Equal(t, KindConflict, KindOf(err))

	current, err := svc.GetActivity(context.Background(), activity.ID)
	require.NoError(t, err)
	require.Len(t, current.AssignedLocker, 1)
	require.Equal(t, "L1", current.AssignedLocker[0].LockerID)
}

func TestForceDetachWorkerRecordsRupture(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")
	env.roles.set("s1", RoleSupervisor)

	_, err := svc.AssignSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.NoError(t, err)
	_, err = svc.AssignWorker(context.Background(), activity.ID, "u1", "s1", "w1")
	require.NoError(t, err)

	outcome, err := svc.ForceDetach(context.Background(), activity.ID, RuptureInput{
		SubjectType:   SubjectWorker,
		SubjectUserID: "w1",
		Reason:        "left site without unlocking",
		ValidatorID:   "sup-99",
	})
	require.NoError(t, err)

	require.Empty(t, outcome.Activity.EnergyOwners[0].Supervisors[0].Workers)
	require.Len(t, outcome.Activity.Ruptures, 1)
	record := outcome.Activity.Ruptures[0]
	require.Equal(t, SubjectWorker, record.SubjectType)
	require.Equal(t, "w1", record.SubjectUserID)
	require.Equal(t, "sup-99", record.ValidatorID)
	require.False(t, record.OccurredAt.IsZero())
}

func TestForceDetachSupervisorBypassesDependencyCheck(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")
	env.roles.set("s1", RoleSupervisor)

	_, err := svc.AssignSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.NoError(t, err)
	_, err = svc.AssignWorker(context.Background(), activity.ID, "u1", "s1", "w1")
	require.NoError(t, err)

	outcome, err := svc.ForceDetach(context.Background(), activity.ID, RuptureInput{
		SubjectType:   SubjectSupervisor,
		SubjectUserID: "s1",
		Reason:        "medical evacuation",
		ValidatorID:   "own-1",
	})
	require.NoError(t, err)
	require.Empty(t, outcome.Activity.EnergyOwners[0].Supervisors)
	require.Len(t, outcome.Activity.Ruptures, 1)
}

func TestForceDetachLastOwnerFinalizes(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")

	_, err := svc.AssignLocker(context.Background(), activity.ID, "L1", "T1")
	require.NoError(t, err)

	outcome, err := svc.ForceDetach(context.Background(), activity.ID, RuptureInput{
		SubjectType:   SubjectEnergyOwner,
		SubjectUserID: "u1",
		Reason:        "owner unreachable",
		ValidatorID:   "mgr-7",
	})
	require.NoError(t, err)
	require.Equal(t, ActivityStatusFinalized, outcome.Activity.Status)
	require.Empty(t, outcome.Activity.AssignedLocker)
	require.Equal(t, []string{"L1"}, env.lockers.released)
}

func TestRupturesAreAppendOnly(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")
	env.roles.set("s1", RoleSupervisor)

	_, err := svc.AssignSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.NoError(t, err)
	_, err = svc.AssignWorker(context.Background(), activity.ID, "u1", "s1", "w1")
	require.NoError(t, err)
	_, err = svc.AssignWorker(context.Background(), activity.ID, "u1", "s1", "w2")
	require.NoError(t, err)

	first, err := svc.ForceDetach(context.Background(), activity.ID, RuptureInput{
		SubjectType: SubjectWorker, SubjectUserID: "w1", Reason: "r1", ValidatorID: "v1",
	})
	require.NoError(t, err)
	second, err := svc.ForceDetach(context.Background(), activity.ID, RuptureInput{
		SubjectType: SubjectWorker, SubjectUserID: "w2", Reason: "r2", ValidatorID: "v2",
	})
	require.NoError(t, err)

	require.Len(t, second.Activity.Ruptures, 2)
	require.Equal(t, first.Activity.Ruptures[0], second.Activity.Ruptures[0])
	require.Equal(t, "w2", second.Activity.Ruptures[1].SubjectUserID)
}

func TestRemoveEquipmentBlockedWhileActive(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.createActivity(t, svc)
	env.equipment.add("E1")
	env.equipment.add("E2")
	env.roles.set("u1", RoleEnergyOwner)

	_, err := svc.AddEquipment(context.Background(), activity.ID, "E1")
	require.NoError(t, err)
	_, err = svc.AddEquipment(context.Background(), activity.ID, "E2")
	require.NoError(t, err)

	// Pending activities can still be re-scoped.
	outcome, err := svc.RemoveEquipment(context.Background(), activity.ID, "E2")
	require.NoError(t, err)
	require.Equal(t, []string{"E1"}, outcome.Activity.EquipmentRefs)

	_, err = svc.ValidateZeroEnergy(context.Background(), activity.ID, "Ana", "Multimeter", "0")
	require.NoError(t, err)
	_, err = svc.AssignEnergyOwner(context.Background(), activity.ID, "u1")
	require.NoError(t, err)

	_, err = svc.RemoveEquipment(context.Background(), activity.ID, "E1")
	require.Equal(t, KindPreconditionFailed, KindOf(err))
}

func TestFinalizedActivityRejectsMutations(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")
	env.roles.set("u2", RoleEnergyOwner)

	outcome, err := svc.DetachEnergyOwner(context.Background(), activity.ID, "u1")
	require.NoError(t, err)
	require.Equal(t, ActivityStatusFinalized, outcome.Activity.Status)
	finishedAt := *outcome.Activity.FinishedAt

	// Equipment refs and the zero-energy record survive finalization; a new
	// owner must still be rejected rather than reopening the activity.
	_, err = svc.AssignEnergyOwner(context.Background(), activity.ID, "u2")
	require.Equal(t, KindPreconditionFailed, KindOf(err))

	_, err = svc.AssignLocker(context.Background(), activity.ID, "L9", "T9")
	require.Equal(t, KindPreconditionFailed, KindOf(err))

	_, err = svc.ValidateZeroEnergy(context.Background(), activity.ID, "Ana", "Multimeter", "0")
	require.Equal(t, KindPreconditionFailed, KindOf(err))

	_, err = svc.AddEquipment(context.Background(), activity.ID, "E1")
	require.Equal(t, KindPreconditionFailed, KindOf(err))

	_, err = svc.ProposeOwnerReplacement(context.Background(), activity.ID, "u2")
	require.Equal(t, KindPreconditionFailed, KindOf(err))

	_, err = svc.ForceDetach(context.Background(), activity.ID, RuptureInput{
		SubjectType: SubjectEnergyOwner, SubjectUserID: "u1", Reason: "r", ValidatorID: "v",
	})
	require.Equal(t, KindPreconditionFailed, KindOf(err))

	current, err := svc.GetActivity(context.Background(), activity.ID)
	require.NoError(t, err)
	require.Equal(t, ActivityStatusFinalized, current.Status)
	require.Empty(t, current.EnergyOwners)
	require.Empty(t, current.AssignedLocker)
	require.True(t, finishedAt.Equal(*current.FinishedAt))
}

func TestAssignLockerRejectedWhenRegistryReportsBusy(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")

	env.lockers.unavailable = true
	_, err := svc.AssignLocker(context.Background(), activity.ID, "L1", "T1")
	require.Equal(t, KindConflict, KindOf(err))

	current, err := svc.GetActivity(context.Background(), activity.ID)
	require.NoError(t, err)
	require.Empty(t, current.AssignedLocker)
	require.Empty(t, env.lockers.occupied)
}

func TestAssignLockerProceedsWhenStatusCheckFails(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")

	// The status check is best-effort: a registry outage must not block the
	// binding, only an affirmative busy answer does.
	env.lockers.statusErr = errors.New("registry down")
	outcome, err := svc.AssignLocker(context.Background(), activity.ID, "L1", "T1")
	require.NoError(t, err)
	require.Len(t, outcome.Activity.AssignedLocker, 1)
}

func TestOwnerReplacementHandshake(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")
	env.roles.set("s1", RoleSupervisor)
	env.roles.set("u2", RoleEnergyOwner)

	_, err := svc.AssignSupervisor(context.Background(), activity.ID, "u1", "s1")
	require.NoError(t, err)

	_, err = svc.ConfirmOwnerReplacement(context.Background(), activity.ID, "u1")
	require.Equal(t, KindPreconditionFailed, KindOf(err))

	_, err = svc.ProposeOwnerReplacement(context.Background(), activity.ID, "u2")
	require.NoError(t, err)

	outcome, err := svc.ConfirmOwnerReplacement(context.Background(), activity.ID, "u1")
	require.NoError(t, err)
	require.Len(t, outcome.Activity.EnergyOwners, 1)
	require.Equal(t, "u2", outcome.Activity.EnergyOwners[0].UserID)
	// The subtree survives the swap.
	require.Len(t, outcome.Activity.EnergyOwners[0].Supervisors, 1)
	require.Empty(t, outcome.Activity.PendingOwnerSwap)
}

func TestMutationRetriesOnVersionConflict(t *testing.T) {
	svc, env := newTestService(t)
	activity := env.activeActivity(t, svc, "u1")

	env.repo.failNextUpdates(1)
	outcome, err := svc.ValidateZeroEnergy(context.Background(), activity.ID, "Ana", "Clamp meter", "0")
	require.NoError(t, err)
	require.NotNil(t, outcome.Activity.ZeroEnergy)

	env.repo.failNextUpdates(maxUpdateRetries)
	_, err = svc.ValidateZeroEnergy(context.Background(), activity.ID, "Ana", "Clamp meter", "0")
	require.Equal(t, KindConflict, KindOf(err))
}

func TestUnknownActivityIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetActivity(context.Background(), "missing")
	require.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.AssignLocker(context.Background(), "missing", "L1", "T1")
	require.Equal(t, KindNotFound, KindOf(err))
}

// --- test fixtures ---

type testEnv struct {
	repo           *memoryRepo
	roles          *stubRoles
	lockers        *stubLockers
	equipment      *stubEquipment
	lockerFailures []string
}

func newTestService(t *testing.T) (*Service, *testEnv) {
	t.Helper()
	env := &testEnv{
		repo:      newMemoryRepo(),
		roles:     &stubRoles{roles: map[string]Role{}},
		lockers:   &stubLockers{},
		equipment: &stubEquipment{refs: map[string]bool{}},
	}
	svc := NewService(env.repo, env.roles, env.lockers, env.equipment, func(op string) {
		env.lockerFailures = append(env.lockerFailures, op)
	})
	return svc, env
}

func (env *testEnv) createActivity(t *testing.T, svc *Service) *Activity {
	t.Helper()
	activity, err := svc.CreateActivity(context.Background(), CreateActivityInput{
		Name:        "Boiler isolation",
		Description: "Annual inspection",
		BlockType:   "thermal",
	})
	require.NoError(t, err)
	return activity
}

// activeActivity builds an activity with equipment E1, a zero-energy
// validation and ownerID attached as first energy owner.
func (env *testEnv) activeActivity(t *testing.T, svc *Service, ownerID string) *Activity {
	t.Helper()
	activity := env.createActivity(t, svc)
	env.equipment.add("E1")
	env.roles.set(ownerID, RoleEnergyOwner)

	_, err := svc.AddEquipment(context.Background(), activity.ID, "E1")
	require.NoError(t, err)
	_, err = svc.ValidateZeroEnergy(context.Background(), activity.ID, "Ana", "Multimeter", "0")
	require.NoError(t, err)
	outcome, err := svc.AssignEnergyOwner(context.Background(), activity.ID, ownerID)
	require.NoError(t, err)
	return outcome.Activity
}

type memoryRepo struct {
	mu          sync.Mutex
	activities  map[string]Activity
	seq         int64
	events      []Event
	failUpdates int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{activities: map[string]Activity{}}
}

func (m *memoryRepo) failNextUpdates(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUpdates = n
}

func (m *memoryRepo) Create(_ context.Context, activity Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities[activity.ID] = cloneActivity(activity)
	return nil
}

func (m *memoryRepo) Get(_ context.Context, activityID string) (*Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.activities[activityID]
	if !ok {
		return nil, nil
	}
	clone := cloneActivity(stored)
	return &clone, nil
}

func (m *memoryRepo) List(_ context.Context, cursor *Cursor, limit int) ([]Activity, *Cursor, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Activity, 0, len(m.activities))
	for _, activity := range m.activities {
		out = append(out, cloneActivity(activity))
	}
	return out, nil, nil
}

func (m *memoryRepo) Update(_ context.Context, activity Activity, evts []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdates > 0 {
		m.failUpdates--
		return ErrVersionConflict
	}
	stored, ok := m.activities[activity.ID]
	if !ok || stored.Version != activity.Version {
		return ErrVersionConflict
	}
	activity.Version++
	m.activities[activity.ID] = cloneActivity(activity)
	m.events = append(m.events, evts...)
	return nil
}

func (m *memoryRepo) NextSequence(_ context.Context, _ string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq, nil
}

// cloneActivity deep-copies via JSON so aggregates handed out by the repo
// never alias stored state.
func cloneActivity(activity Activity) Activity {
	body, err := json.Marshal(activity)
	if err != nil {
		panic(err)
	}
	var clone Activity
	if err := json.Unmarshal(body, &clone); err != nil {
		panic(err)
	}
	return clone
}

type stubRoles struct {
	roles map[string]Role
	err   error
}

func (s *stubRoles) set(userID string, role Role) { s.roles[userID] = role }

func (s *stubRoles) ResolveRole(_ context.Context, userID string) (Role, error) {
	if s.err != nil {
		return RoleNone, s.err
	}
	role, ok := s.roles[userID]
	if !ok {
		return RoleNone, nil
	}
	return role, nil
}

type stubLockers struct {
	occupied    []string
	released    []string
	occupyErr   error
	releaseErr  error
	unavailable bool
	statusErr   error
}

func (s *stubLockers) Occupy(_ context.Context, lockerID, _ string, _ []string) error {
	if s.occupyErr != nil {
		return s.occupyErr
	}
	s.occupied = append(s.occupied, lockerID)
	return nil
}

func (s *stubLockers) Release(_ context.Context, lockerID string) error {
	if s.releaseErr != nil {
		return s.releaseErr
	}
	s.released = append(s.released, lockerID)
	return nil
}

func (s *stubLockers) Available(_ context.Context, _ string) (bool, error) {
	if s.statusErr != nil {
		return false, s.statusErr
	}
	return !s.unavailable, nil
}

type stubEquipment struct {
	refs map[string]bool
	err  error
}

func (s *stubEquipment) add(ref string) { s.refs[ref] = true }

func (s *stubEquipment) Exists(_ context.Context, ref string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.refs[ref], nil
}
