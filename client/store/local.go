package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"kidcheck/domain"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	_ "modernc.org/sqlite"
)

const (
	keyPrefix        = "kidcheck:"
	requestsKey      = keyPrefix + "requests"
	childrenPrefix   = keyPrefix + "children:"
	userPrefix       = keyPrefix + "user:"
	sessionKeyPrefix = keyPrefix + "session:"
)

const schema = `CREATE TABLE IF NOT EXISTS entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// localUser keeps the password, which domain.User never serializes.
type localUser struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	ChildName string    `json:"childName"`
	UserType  string    `json:"userType"`
	CreatedAt time.Time `json:"createdAt"`
}

// Local is the device local backend: a SQLite file of keyed JSON entries.
// Every read-modify-write runs under one mutex and one transaction.
type Local struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// OpenLocal opens or creates the store at path. ":memory:" gives a throwaway store.
func OpenLocal(path string) (*Local, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		// the parent and admin consoles may share one file, so writers wait for
		// the lock and take it before their first read
		dsn = filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)" +
			"&_pragma=synchronous(NORMAL)&_txlock=immediate"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// one connection keeps ":memory:" a single database and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create entries table: %w", err)
	}

	return &Local{db: db, now: time.Now}, nil
}

func (l *Local) Close() error {
	if l == nil || l.db == nil {
		return nil
	}
	return l.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func getEntry(ctx context.Context, q querier, key string, out any) (bool, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM entries WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := sonic.UnmarshalString(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func putEntry(ctx context.Context, q querier, key string, value any, now time.Time) error {
	raw, err := sonic.MarshalString(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = q.ExecContext(ctx, `INSERT INTO entries (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, raw, now.UnixMilli())
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// withTx runs fn inside a transaction while holding the store mutex.
func (l *Local) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (l *Local) mutateRequests(ctx context.Context, fn func(reqs []domain.StatusRequest) ([]domain.StatusRequest, error)) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		var reqs []domain.StatusRequest
		if _, err := getEntry(ctx, tx, requestsKey, &reqs); err != nil {
			return err
		}
		next, err := fn(reqs)
		if err != nil {
			return err
		}
		return putEntry(ctx, tx, requestsKey, next, l.now())
	})
}

func (l *Local) Create(ctx context.Context, in domain.NewRequest) (*domain.StatusRequest, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}

	req := domain.NewStatusRequest(in, l.now())
	err := l.mutateRequests(ctx, func(reqs []domain.StatusRequest) ([]domain.StatusRequest, error) {
		return append([]domain.StatusRequest{req}, reqs...), nil
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (l *Local) List(ctx context.Context, filter domain.RequestFilter) ([]domain.StatusRequest, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var reqs []domain.StatusRequest
	if _, err := getEntry(ctx, l.db, requestsKey, &reqs); err != nil {
		return nil, err
	}
	out := domain.FilterRequests(reqs, filter)
	domain.SortNewestFirst(out)
	return out, nil
}

func (l *Local) Update(ctx context.Context, id string, status domain.RequestStatus, feedback string) (*domain.StatusRequest, error) {
	id, err := validateUpdate(id, status)
	if err != nil {
		return nil, err
	}

	var updated domain.StatusRequest
	err = l.mutateRequests(ctx, func(reqs []domain.StatusRequest) ([]domain.StatusRequest, error) {
		for i := range reqs {
			if reqs[i].ID == id {
				reqs[i].ApplyResponse(status, feedback, l.now())
				updated = reqs[i]
				return reqs, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (l *Local) Delete(ctx context.Context, id string) error {
	id, err := validateID(id)
	if err != nil {
		return err
	}

	return l.mutateRequests(ctx, func(reqs []domain.StatusRequest) ([]domain.StatusRequest, error) {
		for i := range reqs {
			if reqs[i].ID == id {
				return append(reqs[:i], reqs[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	})
}

func (l *Local) Register(ctx context.Context, req domain.RegisterRequest) (*domain.Session, error) {
	if err := normalizeRegister(&req); err != nil {
		return nil, err
	}

	err := l.withTx(ctx, func(tx *sql.Tx) error {
		var existing localUser
		found, err := getEntry(ctx, tx, userPrefix+req.Email, &existing)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, req.Email)
		}
		return putEntry(ctx, tx, userPrefix+req.Email, localUser{
			Name:      req.Name,
			Email:     req.Email,
			Password:  req.Password,
			ChildName: req.ChildName,
			UserType:  req.UserType,
			CreatedAt: l.now(),
		}, l.now())
	})
	if err != nil {
		return nil, err
	}

	return &domain.Session{Role: req.UserType, Email: req.Email, Name: req.Name}, nil
}

func (l *Local) Login(ctx context.Context, req domain.LoginRequest) (*domain.Session, error) {
	if err := normalizeLogin(&req); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	var user localUser
	found, err := getEntry(ctx, l.db, userPrefix+req.Email, &user)
	if err != nil {
		return nil, err
	}
	if !found || user.Password != req.Password {
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrInvalidCredentials)
	}
	if req.UserType != "" && req.UserType != user.UserType {
		return nil, fmt.Errorf("%w: account is not a %s account", domain.ErrInvalidCredentials, req.UserType)
	}

	return &domain.Session{Role: user.UserType, Email: user.Email, Name: user.Name}, nil
}

func (l *Local) Children(ctx context.Context, parentEmail string) ([]domain.Child, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	children := []domain.Child{}
	if _, err := getEntry(ctx, l.db, childrenPrefix+parentEmail, &children); err != nil {
		return nil, err
	}
	return children, nil
}

func (l *Local) SaveChildren(ctx context.Context, parentEmail string, children []domain.Child) error {
	if strings.TrimSpace(parentEmail) == "" {
		return fmt.Errorf("%w: parentEmail is required", domain.ErrValidation)
	}
	return l.withTx(ctx, func(tx *sql.Tx) error {
		return putEntry(ctx, tx, childrenPrefix+parentEmail, children, l.now())
	})
}

func (l *Local) SaveSession(ctx context.Context, session domain.Session) error {
	if session.Role != domain.RoleParent && session.Role != domain.RoleAdmin {
		return fmt.Errorf("%w: unknown role %q", domain.ErrValidation, session.Role)
	}
	return l.withTx(ctx, func(tx *sql.Tx) error {
		return putEntry(ctx, tx, sessionKeyPrefix+session.Role, session, l.now())
	})
}

func (l *Local) Session(ctx context.Context, role string) (*domain.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var session domain.Session
	found, err := getEntry(ctx, l.db, sessionKeyPrefix+role, &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: no %s session", domain.ErrNotFound, role)
	}
	return &session, nil
}

func (l *Local) ClearSessions(ctx context.Context) error {
	return l.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE key LIKE ?`, sessionKeyPrefix+"%"); err != nil {
			return fmt.Errorf("clear sessions: %w", err)
		}
		return nil
	})
}
