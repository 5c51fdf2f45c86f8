package domain

import "time"

// ActivityStatus tracks where an activity sits in its lockout lifecycle.
type ActivityStatus string

const (
	ActivityStatusPending   ActivityStatus = "pending"
	ActivityStatusActive    ActivityStatus = "active"
	ActivityStatusFinalized ActivityStatus = "finalized"
)

// Role is the set of roles the identity provider can report for a user.
type Role string

const (
	RoleEnergyOwner Role = "energyOwner"
	RoleSupervisor  Role = "supervisor"
	RoleWorker      Role = "worker"
	RoleNone        Role = "none"
)

// SubjectType identifies which level of the hierarchy a rupture targets.
type SubjectType string

const (
	SubjectEnergyOwner SubjectType = "owner"
	SubjectSupervisor  SubjectType = "supervisor"
	SubjectWorker      SubjectType = "worker"
)

// ZeroEnergyValidation records proof that the isolated equipment was verified
// de-energized before the first energy owner locks the activity.
type ZeroEnergyValidation struct {
	ValidatorName  string    `json:"validator_name"`
	InstrumentUsed string    `json:"instrument_used"`
	EnergyValue    string    `json:"energy_value"`
	ValidatedAt    time.Time `json:"validated_at"`
}

// LockerBinding ties an activity to the physical locker holding its keys.
type LockerBinding struct {
	LockerID   string    `json:"locker_id"`
	TotemID    string    `json:"totem_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// RuptureRecord is one immutable audit entry for an abnormal removal.
type RuptureRecord struct {
	Reason            string      `json:"reason"`
	OccurredAt        time.Time   `json:"occurred_at"`
	ValidatorID       string      `json:"validator_id"`
	ChosenOptionIndex int         `json:"chosen_option_index"`
	OptionDetails     string      `json:"option_details"`
	CheckedSubOptions []string    `json:"checked_sub_options"`
	SubjectType       SubjectType `json:"subject_type"`
	SubjectUserID     string      `json:"subject_user_id"`
}

// SupervisorNode holds one supervisor and the workers locked under them.
type SupervisorNode struct {
	UserID    string   `json:"user_id"`
	IsBlocked bool     `json:"is_blocked"`
	Workers   []string `json:"workers"`
}

// EnergyOwnerNode holds one energy owner and their supervisor subtree.
type EnergyOwnerNode struct {
	UserID      string           `json:"user_id"`
	IsBlocked   bool             `json:"is_blocked"`
	Supervisors []SupervisorNode `json:"supervisors"`
}

// Activity is the aggregate root for one lockout/tagout work order. All
// hierarchy and locker mutations flow through the Service; the struct itself
// only offers structural lookups.
type Activity struct {
	ID               string
	SequenceNumber   int64
	Name             string
	Description      string
	BlockType        string
	Status           ActivityStatus
	IsBlocked        bool
	EquipmentRefs    []string
	ZeroEnergy       *ZeroEnergyValidation
	EnergyOwners     []EnergyOwnerNode
	AssignedLocker   []LockerBinding
	Ruptures         []RuptureRecord
	PendingOwnerSwap string
	FinishedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Version          int64
}

func (a *Activity) ownerIndex(userID string) int {
	for i := range a.EnergyOwners {
		if a.EnergyOwners[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (o *EnergyOwnerNode) supervisorIndex(userID string) int {
	for i := range o.Supervisors {
		if o.Supervisors[i].UserID == userID {
			return i
		}
	}
	return -1
}

func (s *SupervisorNode) workerIndex(userID string) int {
	for i, w := range s.Workers {
		if w == userID {
			return i
		}
	}
	return -1
}

// HasEquipment reports whether ref is already part of the isolation set.
func (a *Activity) HasEquipment(ref string) bool {
	for _, existing := range a.EquipmentRefs {
		if existing == ref {
			return true
		}
	}
	return false
}

// HasLocker reports whether the activity is bound to a physical locker.
func (a *Activity) HasLocker() bool {
	return len(a.AssignedLocker) > 0
}

// finalize flips the aggregate into its terminal state. Callers must have
// verified the owner list is empty.
func (a *Activity) finalize(now time.Time) {
	a.Status = ActivityStatusFinalized
	a.IsBlocked = false
	a.EnergyOwners = nil
	finished := now
	a.FinishedAt = &finished
}
