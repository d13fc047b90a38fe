package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"sync"

	"github.com/chazu/partforge/pkg/intent"
	"github.com/cockroachdb/errors"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const schema = `
CREATE TABLE IF NOT EXISTS design_intents (
  id TEXT PRIMARY KEY,
  revision INTEGER NOT NULL,
  part_class TEXT NOT NULL DEFAULT '',
  body JSONB NOT NULL,
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`

// Postgres stores each design as a JSONB document keyed by id. A put only
// replaces a row whose revision is not newer than the incoming one.
type Postgres struct {
	db *sql.DB

	schemaOnce sync.Once
	schemaErr  error
}

var _ Store = (*Postgres)(nil)

// NewPostgres opens and pings dsn.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, errors.Wrap(err, "store: open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "store: ping postgres")
	}
	return &Postgres{db: db}, nil
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, err := s.db.ExecContext(ctx, schema)
		s.schemaErr = errors.Wrap(err, "store: create schema")
	})
	return s.schemaErr
}

func (s *Postgres) Put(ctx context.Context, d intent.DesignIntent) error {
	id := strings.TrimSpace(d.ID)
	if id == "" {
		return ErrNoID
	}
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	body, err := json.Marshal(d)
	if err != nil {
		return errors.Wrapf(err, "store: encode design %s", id)
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO design_intents (id, revision, part_class, body)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id)
DO UPDATE SET revision=EXCLUDED.revision,
  part_class=EXCLUDED.part_class,
  body=EXCLUDED.body,
  updated_at=NOW()
WHERE design_intents.revision <= EXCLUDED.revision`,
		id, d.Revision, d.PartClass, body)
	if err != nil {
		return errors.Wrapf(err, "store: put design %s", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "store: put design %s", id)
	}
	if n == 0 {
		return errors.Wrapf(ErrStale, "design %s: put revision %d", id, d.Revision)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, id string) (intent.DesignIntent, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return intent.DesignIntent{}, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT body FROM design_intents WHERE id = $1`, strings.TrimSpace(id))
	d, err := scanDesign(row)
	if errors.Is(err, sql.ErrNoRows) {
		return intent.DesignIntent{}, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	return d, err
}

func (s *Postgres) List(ctx context.Context) ([]intent.DesignIntent, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT body FROM design_intents ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "store: list designs")
	}
	defer rows.Close()

	var out []intent.DesignIntent
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, errors.Wrap(rows.Err(), "store: list designs")
}

func (s *Postgres) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDesign(row rowScanner) (intent.DesignIntent, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return intent.DesignIntent{}, err
		}
		return intent.DesignIntent{}, errors.Wrap(err, "store: scan design")
	}
	var d intent.DesignIntent
	if err := json.Unmarshal(body, &d); err != nil {
		return intent.DesignIntent{}, errors.Wrap(err, "store: decode design")
	}
	return d, nil
}
