package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"
)

// snapshotSchema describes the persisted dataset shape. A snapshot written
// by an older build (or tampered with out of band) that fails validation is
// discarded instead of poisoning the working dataset.
const snapshotSchema = `{
	"type": "array",
	"items": {
		"type": "object",
		"required": ["id", "name", "nationalId", "gradeLevel", "grades"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"name": {"type": "string"},
			"seatingNumber": {"type": "string"},
			"nationalId": {"type": "string", "pattern": "^[0-9]{10,}$"},
			"class": {"type": "string"},
			"gradeLevel": {"type": "string", "enum": ["1", "2"]},
			"gpa": {"type": "number"},
			"grades": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["name", "score", "maxScore", "status"],
					"properties": {
						"name": {"type": "string"},
						"score": {"type": "number"},
						"maxScore": {"type": "number"},
						"status": {"type": "string", "enum": ["Pass", "Fail"]}
					}
				}
			}
		}
	}
}`

// Snapshot persists the working dataset as JSON in Redis so a restart does
// not lose the last import. It is a convenience cache, not the system of
// record; every error besides a missing key is surfaced to the caller.
type Snapshot struct {
	client *redis.Client
	key    string
}

// NewSnapshot creates a snapshot bound to the given Redis key.
func NewSnapshot(client *redis.Client, key string) *Snapshot {
	if key == "" {
		key = "portal:roster"
	}
	return &Snapshot{client: client, key: key}
}

// Save stores the dataset, replacing any previous snapshot.
func (s *Snapshot) Save(ctx context.Context, students []Student) error {
	data, err := json.Marshal(students)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the persisted dataset, or nil when no snapshot exists.
func (s *Snapshot) Load(ctx context.Context) ([]Student, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

// decodeSnapshot validates raw snapshot bytes against the schema and
// unmarshals them.
func decodeSnapshot(data []byte) ([]Student, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(snapshotSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate snapshot: %w", err)
	}
	if !result.Valid() {
		return nil, fmt.Errorf("snapshot does not match schema: %v", result.Errors())
	}

	var students []Student
	if err := json.Unmarshal(data, &students); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return students, nil
}
