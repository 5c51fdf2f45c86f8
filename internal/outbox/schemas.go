package outbox

import "example.com/lockout/internal/events"

// SchemaCatalogEntry maps event type to schema definition.
type SchemaCatalogEntry struct {
	Schema string
}

var schemaCatalog = map[string]SchemaCatalogEntry{
	events.TypeActivityCreated: {
		Schema: activityCreatedSchema,
	},
	events.TypeStateChanged: {
		Schema: stateChangedSchema,
	},
	events.TypeRuptureRecorded: {
		Schema: ruptureRecordedSchema,
	},
}

const activityCreatedSchema = `{
  "type": "object",
  "title": "LockoutActivityCreated",
  "properties": {
    "activity_id": {"type": "string"},
    "sequence_number": {"type": "integer"},
    "name": {"type": "string"},
    "block_type": {"type": "string"},
    "created_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "sequence_number", "name", "block_type", "created_at"],
  "additionalProperties": false
}`

const stateChangedSchema = `{
  "type": "object",
  "title": "LockoutStateChanged",
  "properties": {
    "activity_id": {"type": "string"},
    "status": {"type": "string"},
    "is_blocked": {"type": "boolean"},
    "occurred_at": {"type": "string", "format": "date-time"},
    "reason": {"type": "string"}
  },
  "required": ["activity_id", "status", "is_blocked", "occurred_at"],
  "additionalProperties": false
}`

const ruptureRecordedSchema = `{
  "type": "object",
  "title": "LockoutRuptureRecorded",
  "properties": {
    "activity_id": {"type": "string"},
    "subject_type": {"type": "string"},
    "subject_user_id": {"type": "string"},
    "reason": {"type": "string"},
    "validator_id": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["activity_id", "subject_type", "subject_user_id", "reason", "validator_id", "occurred_at"],
  "additionalProperties": false
}`
