package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a PostgreSQL-backed Store implementation. The whole
// dataset is swapped inside one transaction so a concurrent lookup never
// observes a half-imported roster.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store and ensures the
// students table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS students (
			id             text PRIMARY KEY,
			name           text NOT NULL,
			seating_number text NOT NULL DEFAULT '0',
			national_id    text NOT NULL,
			class          text NOT NULL DEFAULT '-',
			grade_level    text NOT NULL,
			grades         jsonb NOT NULL DEFAULT '[]'::jsonb,
			gpa            double precision NOT NULL DEFAULT 0,
			position       integer NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS students_lookup_idx
			ON students (national_id, grade_level);
	`)
	return err
}

func (s *PostgresStore) ReplaceAll(ctx context.Context, students []Student) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("clear students: %w", err)
	}

	batch := &pgx.Batch{}
	for i, st := range students {
		grades, err := json.Marshal(st.Grades)
		if err != nil {
			return fmt.Errorf("marshal grades for %s: %w", st.ID, err)
		}
		batch.Queue(
			`INSERT INTO students (id, name, seating_number, national_id, class, grade_level, grades, gpa, position)
			 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8, $9)`,
			st.ID, st.Name, st.SeatingNumber, st.NationalID, st.Class,
			string(st.GradeLevel), string(grades), st.GPA, i,
		)
	}
	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert students: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func (s *PostgresStore) Lookup(ctx context.Context, nationalID string, level GradeLevel) (Student, bool, error) {
	return s.queryOne(ctx,
		`SELECT id, name, seating_number, national_id, class, grade_level, grades, gpa
		 FROM students
		 WHERE national_id = $1 AND grade_level = $2
		 ORDER BY position ASC
		 LIMIT 1`,
		nationalID, string(level),
	)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Student, bool, error) {
	return s.queryOne(ctx,
		`SELECT id, name, seating_number, national_id, class, grade_level, grades, gpa
		 FROM students
		 WHERE id = $1`,
		id,
	)
}

func (s *PostgresStore) All(ctx context.Context) ([]Student, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, seating_number, national_id, class, grade_level, grades, gpa
		 FROM students
		 ORDER BY position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query students: %w", err)
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate students: %w", err)
	}
	return students, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (Student, bool, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return Student{}, false, fmt.Errorf("query student: %w", err)
	}
	defer rows.Close()

	st, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (Student, error) {
		return scanStudent(row)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, false, nil
		}
		return Student{}, false, err
	}
	return st, true, nil
}

func scanStudent(row pgx.Row) (Student, error) {
	var st Student
	var level string
	var grades []byte
	if err := row.Scan(&st.ID, &st.Name, &st.SeatingNumber, &st.NationalID,
		&st.Class, &level, &grades, &st.GPA); err != nil {
		return Student{}, fmt.Errorf("scan student: %w", err)
	}
	st.GradeLevel = GradeLevel(level)
	if len(grades) > 0 {
		if err := json.Unmarshal(grades, &st.Grades); err != nil {
			return Student{}, fmt.Errorf("unmarshal grades: %w", err)
		}
	}
	return st, nil
}
