package mystore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationFolder embed.FS

type sqlExecutor interface {
	ExecContext(c context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(c context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(c context.Context, query string, args ...any) *sql.Row
}

// postgresStore keeps every kind in one JSONB table, keyed on (kind, uid).
type postgresStore[T any] struct {
	db   *sql.DB
	kind string
}

func newPostgresStore[T any](c context.Context, databaseURL string) (*postgresStore[T], func(), error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening database: %w", err)
	}

	err = db.PingContext(c)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error pinging database: %w", err)
	}

	err = runMigrations(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return &postgresStore[T]{
			db:   db,
			kind: kindOf[T](),
		}, func() {
			db.Close()
		}, nil
}

func runMigrations(db *sql.DB) error {
	source, err := iofs.New(migrationFolder, "migrations")
	if err != nil {
		return fmt.Errorf("error reading migrations: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: "cafe_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("error creating migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running migrations: %w", err)
	}

	return nil
}

func (s *postgresStore[T]) executor(c context.Context) sqlExecutor {
	tx, ok := c.Value(ctxTransactionKey{}).(*sql.Tx)
	if ok {
		return tx
	}
	return s.db
}

// serializationFailure is reported when concurrent serializable transactions cannot both commit
const serializationFailure = "40001"

func (s *postgresStore[T]) RunInTransaction(c context.Context, f func(c context.Context) error) error {
	if _, running := c.Value(ctxTransactionKey{}).(*sql.Tx); running {
		// join the transaction that is already active
		return f(c)
	}

	var err error
	for i := 1; i <= maxTransactionAttempts; i++ {
		err = s.runInTransaction(c, f)
		if err != nil {
			if isSerializationFailure(err) {
				log.Printf("Serialization failure, retrying (%d of %d): %s", i, maxTransactionAttempts, err)
				// force retry: this approach requires idempotency of the business logic
				continue
			}

			return err
		}
		return nil
	}
	return err
}

func (s *postgresStore[T]) runInTransaction(c context.Context, f func(c context.Context) error) error {
	// Serializable, so a read-then-write of one uid cannot succeed twice concurrently
	tx, err := s.db.BeginTx(c, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	err = f(context.WithValue(c, ctxTransactionKey{}, tx))
	if err != nil {
		// Rollback
		rollbackErr := tx.Rollback()
		if rollbackErr != nil {
			log.Printf("error rolling-back transaction: %s", rollbackErr)
		}
		return err
	}

	// Commit
	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

func isSerializationFailure(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == serializationFailure
}

func (s *postgresStore[T]) Put(c context.Context, uid string, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error marshalling entity %s with uid %s: %s", s.kind, uid, err)
	}

	_, err = s.executor(c).ExecContext(c,
		`INSERT INTO entities (kind, uid, data, updated_at) VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (kind, uid) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		s.kind, uid, string(data))
	if err != nil {
		return fmt.Errorf("error storing entity %s with uid %s: %w", s.kind, uid, err)
	}

	return nil
}

func (s *postgresStore[T]) Get(c context.Context, uid string) (T, bool, error) {
	var value T
	var data []byte

	err := s.executor(c).QueryRowContext(c,
		`SELECT data FROM entities WHERE kind = $1 AND uid = $2`, s.kind, uid).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return value, false, nil
	}
	if err != nil {
		return value, false, fmt.Errorf("error fetching entity %s with uid %s: %w", s.kind, uid, err)
	}

	err = json.Unmarshal(data, &value)
	if err != nil {
		return value, false, fmt.Errorf("error unmarshalling entity %s with uid %s: %s", s.kind, uid, err)
	}

	return value, true, nil
}

func (s *postgresStore[T]) GetMulti(c context.Context, uids []string) (map[string]T, error) {
	result := map[string]T{}
	if len(uids) == 0 {
		return result, nil
	}

	rows, err := s.executor(c).QueryContext(c,
		`SELECT uid, data FROM entities WHERE kind = $1 AND uid = ANY($2)`, s.kind, pq.Array(uids))
	if err != nil {
		return nil, fmt.Errorf("error fetching entities %s: %w", s.kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid string
		var data []byte
		err = rows.Scan(&uid, &data)
		if err != nil {
			return nil, fmt.Errorf("error scanning entity %s: %s", s.kind, err)
		}

		var value T
		err = json.Unmarshal(data, &value)
		if err != nil {
			return nil, fmt.Errorf("error unmarshalling entity %s with uid %s: %s", s.kind, uid, err)
		}
		result[uid] = value
	}

	return result, rows.Err()
}

func (s *postgresStore[T]) List(c context.Context) ([]T, error) {
	return s.selectWhere(c, nil)
}

func (s *postgresStore[T]) Query(c context.Context, filters []Filter, orderByField string) ([]T, error) {
	// Equality filters are pushed down as a JSONB containment, the rest is evaluated like the in-memory store.
	containment := map[string]any{}
	remaining := []Filter{}
	for _, f := range filters {
		if f.Compare == "=" {
			containment[f.Field] = f.Value
			continue
		}
		remaining = append(remaining, f)
	}

	candidates, err := s.selectWhere(c, containment)
	if err != nil {
		return nil, err
	}

	return filterAndSort(candidates, remaining, orderByField)
}

func (s *postgresStore[T]) selectWhere(c context.Context, containment map[string]any) ([]T, error) {
	query := `SELECT data FROM entities WHERE kind = $1 ORDER BY uid`
	args := []any{s.kind}
	if len(containment) > 0 {
		filter, err := json.Marshal(containment)
		if err != nil {
			return nil, fmt.Errorf("error marshalling filter: %s", err)
		}
		query = `SELECT data FROM entities WHERE kind = $1 AND data @> $2::jsonb ORDER BY uid`
		args = append(args, string(filter))
	}

	rows, err := s.executor(c).QueryContext(c, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying entities %s: %w", s.kind, err)
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		var data []byte
		err = rows.Scan(&data)
		if err != nil {
			return nil, fmt.Errorf("error scanning entity %s: %s", s.kind, err)
		}
		var value T
		err = json.Unmarshal(data, &value)
		if err != nil {
			return nil, fmt.Errorf("error unmarshalling entity %s: %s", s.kind, err)
		}
		result = append(result, value)
	}

	return result, rows.Err()
}
