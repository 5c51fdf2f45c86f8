package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/lockout/internal/domain"
	"example.com/lockout/internal/events"
	"example.com/lockout/internal/observability"
)

const activityColumns = `activity_id, sequence_number, name, description, block_type, status, is_blocked,
        equipment_refs, zero_energy, energy_owners, assigned_locker, ruptures, pending_owner_swap,
        finished_at, created_at, updated_at, version`

// Repository provides Postgres-backed persistence for lockout activities and
// their outbox events. The activity document is stored as JSONB columns
// mirroring the aggregate; the version column backs optimistic concurrency.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextSequence atomically increments the named counter and returns the new
// value. Duplicate-free under concurrent creations; gaps are tolerated.
func (r *Repository) NextSequence(ctx context.Context, counterName string) (int64, error) {
	const stmt = `INSERT INTO sequences (name, value) VALUES ($1, 1)
        ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
        RETURNING value`

	var value int64
	if err := r.pool.QueryRow(ctx, stmt, counterName).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}

// Create persists a new activity and records its created event inside a single
// transaction.
func (r *Repository) Create(ctx context.Context, activity domain.Activity) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const insertActivity = `INSERT INTO activities (activity_id, sequence_number, name, description, block_type, status, is_blocked,
            equipment_refs, zero_energy, energy_owners, assigned_locker, ruptures, pending_owner_swap,
            finished_at, created_at, updated_at, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	_, err = tx.Exec(ctx, insertActivity,
		activity.ID,
		activity.SequenceNumber,
		activity.Name,
		activity.Description,
		activity.BlockType,
		activity.Status,
		activity.IsBlocked,
		jsonOrEmptyArray(activity.EquipmentRefs),
		activity.ZeroEnergy,
		jsonOrEmptyArray(activity.EnergyOwners),
		jsonOrEmptyArray(activity.AssignedLocker),
		jsonOrEmptyArray(activity.Ruptures),
		nullIfEmpty(activity.PendingOwnerSwap),
		activity.FinishedAt,
		activity.CreatedAt,
		activity.UpdatedAt,
		activity.Version,
	)
	if err != nil {
		return err
	}

	created := domain.Event{
		Type: events.TypeActivityCreated,
		Payload: events.ActivityCreated{
			ActivityID:     activity.ID,
			SequenceNumber: activity.SequenceNumber,
			Name:           activity.Name,
			BlockType:      activity.BlockType,
			CreatedAt:      activity.CreatedAt,
		},
	}
	if err = r.insertOutbox(ctx, tx, activity, created); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordActivityPersisted(activity.UpdatedAt)
	return nil
}

// Get retrieves an activity by id, or nil when absent.
func (r *Repository) Get(ctx context.Context, activityID string) (*domain.Activity, error) {
	query := fmt.Sprintf(`SELECT %s FROM activities WHERE activity_id=$1`, activityColumns)

	row := r.pool.QueryRow(ctx, query, activityID)
	activity, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return activity, nil
}

// List returns activities ordered by descending sequence number.
func (r *Repository) List(ctx context.Context, cursor *domain.Cursor, limit int) ([]domain.Activity, *domain.Cursor, error) {
	args := []interface{}{limit}
	query := fmt.Sprintf(`SELECT %s FROM activities`, activityColumns)

	if cursor != nil {
		query += ` WHERE (sequence_number, activity_id) < ($2, $3)`
		args = append(args, cursor.SequenceNumber, cursor.ID)
	}

	query += ` ORDER BY sequence_number DESC, activity_id DESC LIMIT $1`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	results := make([]domain.Activity, 0, limit)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, nil, err
		}
		results = append(results, *activity)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	var nextCursor *domain.Cursor
	if len(results) == limit {
		last := results[len(results)-1]
		nextCursor = &domain.Cursor{SequenceNumber: last.SequenceNumber, ID: last.ID}
	}
	return results, nextCursor, nil
}

// Update writes the aggregate back with a compare-and-swap on its version and
// records the supplied events in the same transaction. Returns
// domain.ErrVersionConflict when the stored version moved.
func (r *Repository) Update(ctx context.Context, activity domain.Activity, evts []domain.Event) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback(ctx)
		}
	}()

	const stmt = `UPDATE activities SET
            name=$2, description=$3, block_type=$4, status=$5, is_blocked=$6,
            equipment_refs=$7, zero_energy=$8, energy_owners=$9, assigned_locker=$10,
            ruptures=$11, pending_owner_swap=$12, finished_at=$13, updated_at=$14,
            version=version+1
        WHERE activity_id=$1 AND version=$15`

	tag, err := tx.Exec(ctx, stmt,
		activity.ID,
		activity.Name,
		activity.Description,
		activity.BlockType,
		activity.Status,
		activity.IsBlocked,
		jsonOrEmptyArray(activity.EquipmentRefs),
		activity.ZeroEnergy,
		jsonOrEmptyArray(activity.EnergyOwners),
		jsonOrEmptyArray(activity.AssignedLocker),
		jsonOrEmptyArray(activity.Ruptures),
		nullIfEmpty(activity.PendingOwnerSwap),
		activity.FinishedAt,
		activity.UpdatedAt,
		activity.Version,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		err = domain.ErrVersionConflict
		return err
	}

	for _, evt := range evts {
		if err = r.insertOutbox(ctx, tx, activity, evt); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	observability.RecordActivityPersisted(activity.UpdatedAt)
	for _, evt := range evts {
		recordEventMetric(evt)
	}
	return nil
}

// recordEventMetric maps committed domain events onto lifecycle counters.
func recordEventMetric(evt domain.Event) {
	switch payload := evt.Payload.(type) {
	case events.StateChanged:
		switch domain.ActivityStatus(payload.Status) {
		case domain.ActivityStatusActive:
			observability.RecordActivityActivated()
		case domain.ActivityStatusFinalized:
			observability.RecordActivityFinalized()
		}
	case events.RuptureRecorded:
		observability.RecordRupture(payload.SubjectType)
	}
}

func (r *Repository) insertOutbox(ctx context.Context, tx pgx.Tx, activity domain.Activity, evt domain.Event) error {
	body, err := json.Marshal(evt.Payload)
	if err != nil {
		return err
	}

	meta, ok := eventCatalog[evt.Type]
	if !ok {
		return fmt.Errorf("unknown event type: %s", evt.Type)
	}

	// Version is included so a retried write of the same transition dedupes
	// while distinct transitions of the same type do not.
	dedupeKey := fmt.Sprintf("%s:%s:%d", activity.ID, evt.Type, activity.Version)

	const stmt = `INSERT INTO outbox (aggregate_type, aggregate_id, event_type, topic, schema_subject, partition_key, payload, dedupe_key)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (dedupe_key) DO NOTHING`

	_, err = tx.Exec(ctx, stmt,
		"activity",
		activity.ID,
		evt.Type,
		meta.Topic,
		meta.SchemaSubject,
		meta.PartitionKeyFn(activity),
		body,
		dedupeKey,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanActivity(row rowScanner) (*domain.Activity, error) {
	var (
		activity    domain.Activity
		pendingSwap *string
	)
	err := row.Scan(
		&activity.ID,
		&activity.SequenceNumber,
		&activity.Name,
		&activity.Description,
		&activity.BlockType,
		&activity.Status,
		&activity.IsBlocked,
		&activity.EquipmentRefs,
		&activity.ZeroEnergy,
		&activity.EnergyOwners,
		&activity.AssignedLocker,
		&activity.Ruptures,
		&pendingSwap,
		&activity.FinishedAt,
		&activity.CreatedAt,
		&activity.UpdatedAt,
		&activity.Version,
	)
	if err != nil {
		return nil, err
	}
	if pendingSwap != nil {
		activity.PendingOwnerSwap = *pendingSwap
	}
	return &activity, nil
}

func nullIfEmpty(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}

// jsonOrEmptyArray keeps nil slices stored as [] so the persisted document
// shape stays stable for readers outside this service.
func jsonOrEmptyArray(value interface{}) interface{} {
	body, err := json.Marshal(value)
	if err != nil || string(body) == "null" {
		return []byte("[]")
	}
	return body
}

// EventMetadata describes how to route an outbox event.
type EventMetadata struct {
	Topic          string
	SchemaSubject  string
	PartitionKeyFn func(domain.Activity) string
}

var eventCatalog = map[string]EventMetadata{
	events.TypeActivityCreated: {
		Topic:         "lockout_events",
		SchemaSubject: "lockout_events-value",
		PartitionKeyFn: func(a domain.Activity) string {
			return a.ID
		},
	},
	events.TypeStateChanged: {
		Topic:         "lockout_state_changed",
		SchemaSubject: "lockout_state_changed-value",
		PartitionKeyFn: func(a domain.Activity) string {
			return a.ID
		},
	},
	events.TypeRuptureRecorded: {
		Topic:         "lockout_ruptures",
		SchemaSubject: "lockout_ruptures-value",
		PartitionKeyFn: func(a domain.Activity) string {
			return a.ID
		},
	},
}
