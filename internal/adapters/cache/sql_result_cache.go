package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/platform/db"
	"cash-routing-service/internal/platform/obs"
)

// SQLResultCache is a SQL-backed cache of solved results, used when no Redis
// is configured. Entries past expires_at are misses; expires_at 0 never expires.
type SQLResultCache struct {
	DB     *sql.DB
	Driver string
	TTL    time.Duration

	now func() time.Time
}

func NewSQLResultCache(conn *sql.DB, driver string, ttl time.Duration) *SQLResultCache {
	return &SQLResultCache{DB: conn, Driver: driver, TTL: ttl, now: time.Now}
}

// Fetch a cached result by fingerprint.
func (s *SQLResultCache) GetResult(ctx context.Context, fingerprint string) (_ *domain.SolveResult, _ bool, err error) {
	defer obs.Time(ctx, "result.cache.sql.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("result cache: db is nil")
	}
	if fingerprint == "" {
		return nil, false, errors.New("get result cache: fingerprint must not be empty")
	}

	q := `
	SELECT result, expires_at
	FROM solve_cache
	WHERE fingerprint = $1;
	`
	var data string
	var expiresAt int64
	err = s.DB.QueryRowContext(ctx, db.Rebind(s.Driver, q), fingerprint).Scan(&data, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get result cache: query solve_cache table: %w", err)
	}
	if expiresAt != 0 && s.clock().UnixNano() >= expiresAt {
		return nil, false, nil
	}

	var res domain.SolveResult
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, false, fmt.Errorf("get result cache: decode %s: %w", fingerprint, err)
	}
	return &res, true, nil
}

// Store a result, replacing any previous entry for the fingerprint.
func (s *SQLResultCache) PutResult(ctx context.Context, fingerprint string, res *domain.SolveResult) (err error) {
	defer obs.Time(ctx, "result.cache.sql.Put")(&err)

	if s.DB == nil {
		return errors.New("result cache: db is nil")
	}
	if fingerprint == "" || res == nil {
		return errors.New("insert result cache: fingerprint and result are required")
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("insert result cache: encode: %w", err)
	}
	var expiresAt int64
	if s.TTL > 0 {
		expiresAt = s.clock().Add(s.TTL).UnixNano()
	}

	q := `
	INSERT INTO solve_cache (fingerprint, result, expires_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (fingerprint) DO UPDATE
	SET result = EXCLUDED.result,
		expires_at = EXCLUDED.expires_at;
	`
	if _, err := s.DB.ExecContext(ctx, db.Rebind(s.Driver, q), fingerprint, string(data), expiresAt); err != nil {
		return fmt.Errorf("insert result cache fingerprint=%s: %w", fingerprint, err)
	}
	return nil
}

func (s *SQLResultCache) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
