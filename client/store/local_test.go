package store

import (
	"context"
	"errors"
	"kidcheck/domain"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

func openTestLocal(t *testing.T) *Local {
	t.Helper()
	l, err := OpenLocal(":memory:")
	if err != nil {
		t.Fatalf("open local: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func anaInput() domain.NewRequest {
	return domain.NewRequest{
		Type:        domain.RequestCheckin,
		ChildName:   "Ana",
		ChildGrade:  "3rd",
		ParentEmail: "p@x.com",
		ParentName:  "Pat",
	}
}

func TestLocalCreateListUpdateDelete(t *testing.T) {
	l := openTestLocal(t)
	ctx := context.Background()

	created, err := l.Create(ctx, anaInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.StatusPending || created.Feedback != nil || created.ResponseTime != nil {
		t.Fatalf("created = %+v", created)
	}

	other := anaInput()
	other.ParentEmail = "q@x.com"
	other.ChildName = "Ben"
	second, err := l.Create(ctx, other)
	if err != nil {
		t.Fatalf("create other: %v", err)
	}

	all, err := l.List(ctx, domain.RequestFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("list = %+v, want newest first", all)
	}

	mine, _ := l.List(ctx, domain.RequestFilter{ParentEmail: "p@x.com"})
	if len(mine) != 1 || mine[0].ID != created.ID {
		t.Fatalf("filtered list = %+v", mine)
	}

	none, err := l.List(ctx, domain.RequestFilter{ParentEmail: "nobody@x.com"})
	if err != nil || len(none) != 0 {
		t.Fatalf("empty match = %+v, %v", none, err)
	}

	updated, err := l.Update(ctx, created.ID, domain.StatusApproved, "ok")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusApproved || *updated.Feedback != "ok" || updated.ResponseTime == nil || updated.UpdatedAt == nil {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := l.Update(ctx, "missing", domain.StatusApproved, "ok"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
	if _, err := l.Update(ctx, created.ID, domain.StatusPending, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("update to pending err = %v", err)
	}

	if err := l.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := l.Delete(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delete twice err = %v", err)
	}
	all, _ = l.List(ctx, domain.RequestFilter{})
	if len(all) != 1 || all[0].ID != second.ID {
		t.Fatalf("after delete = %+v", all)
	}
}

func TestLocalCreateValidation(t *testing.T) {
	l := openTestLocal(t)
	in := anaInput()
	in.ParentName = ""
	if _, err := l.Create(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	all, _ := l.List(context.Background(), domain.RequestFilter{})
	if len(all) != 0 {
		t.Fatalf("invalid request stored: %+v", all)
	}
}

func TestLocalConcurrentCreates(t *testing.T) {
	l := openTestLocal(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Create(ctx, anaInput()); err != nil {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	all, _ := l.List(ctx, domain.RequestFilter{})
	if len(all) != 20 {
		t.Fatalf("len = %d, want 20", len(all))
	}
	seen := map[string]bool{}
	for _, r := range all {
		if seen[r.ID] {
			t.Fatalf("duplicate id %s", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestLocalPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kidcheck.db")
	ctx := context.Background()

	l, err := OpenLocal(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	created, err := l.Create(ctx, anaInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_ = l.Close()

	l, err = OpenLocal(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l.Close()
	all, _ := l.List(ctx, domain.RequestFilter{})
	if len(all) != 1 || all[0].ID != created.ID {
		t.Fatalf("after reopen = %+v", all)
	}
}

func TestLocalAuth(t *testing.T) {
	l := openTestLocal(t)
	ctx := context.Background()

	session, err := l.Register(ctx, domain.RegisterRequest{Name: "Pat", Email: "P@x.com", Password: "secret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if session.Email != "p@x.com" || session.Role != domain.RoleParent {
		t.Fatalf("session = %+v", session)
	}
	if _, err := l.Register(ctx, domain.RegisterRequest{Name: "Pat", Email: "p@x.com", Password: "x"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("duplicate err = %v", err)
	}
	if _, err := l.Login(ctx, domain.LoginRequest{Email: "p@x.com", Password: "bad"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("bad password err = %v", err)
	}
	if _, err := l.Login(ctx, domain.LoginRequest{Email: "p@x.com", Password: "secret"}); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLocalChildrenAndSessions(t *testing.T) {
	l := openTestLocal(t)
	ctx := context.Background()

	children, err := l.Children(ctx, "p@x.com")
	if err != nil || len(children) != 0 {
		t.Fatalf("children = %+v, %v", children, err)
	}
	book := []domain.Child{{Name: "Ana", Grade: "3rd"}, {}}
	if err := l.SaveChildren(ctx, "p@x.com", book); err != nil {
		t.Fatalf("save children: %v", err)
	}
	children, _ = l.Children(ctx, "p@x.com")
	if len(children) != 2 || children[0].Name != "Ana" || children[1].Selectable() {
		t.Fatalf("children = %+v", children)
	}

	if _, err := l.Session(ctx, domain.RoleAdmin); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing session err = %v", err)
	}
	_ = l.SaveSession(ctx, domain.Session{Role: domain.RoleAdmin, Name: "Ms. Lee"})
	_ = l.SaveSession(ctx, domain.Session{Role: domain.RoleParent, Email: "p@x.com", Name: "Pat"})
	got, err := l.Session(ctx, domain.RoleAdmin)
	if err != nil || got.Name != "Ms. Lee" {
		t.Fatalf("session = %+v, %v", got, err)
	}

	if err := l.ClearSessions(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := l.Session(ctx, domain.RoleParent); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("session after clear err = %v", err)
	}
	children, _ = l.Children(ctx, "p@x.com")
	if len(children) != 2 {
		t.Fatalf("clearing sessions touched children: %+v", children)
	}
}

func TestLocalSharedFileAcrossHandles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kidcheck.db")
	ctx := context.Background()

	parent, err := OpenLocal(path)
	if err != nil {
		t.Fatalf("open parent handle: %v", err)
	}
	defer parent.Close()
	admin, err := OpenLocal(path)
	if err != nil {
		t.Fatalf("open admin handle: %v", err)
	}
	defer admin.Close()

	var journal string
	if err := parent.db.QueryRow(`PRAGMA journal_mode`).Scan(&journal); err != nil || journal != "wal" {
		t.Fatalf("journal_mode = %q, %v, want wal", journal, err)
	}
	var busy int
	if err := admin.db.QueryRow(`PRAGMA busy_timeout`).Scan(&busy); err != nil || busy != 5000 {
		t.Fatalf("busy_timeout = %d, %v, want 5000", busy, err)
	}

	const perHandle = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []error
	for _, l := range []*Local{parent, admin} {
		wg.Add(1)
		go func(l *Local) {
			defer wg.Done()
			for i := 0; i < perHandle; i++ {
				if _, err := l.Create(ctx, anaInput()); err != nil {
					mu.Lock()
					failures = append(failures, err)
					mu.Unlock()
				}
				if _, err := l.List(ctx, domain.RequestFilter{}); err != nil {
					mu.Lock()
					failures = append(failures, err)
					mu.Unlock()
				}
			}
		}(l)
	}
	wg.Wait()

	if len(failures) != 0 {
		t.Fatalf("%d failed calls, first: %v", len(failures), failures[0])
	}
	all, err := admin.List(ctx, domain.RequestFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2*perHandle {
		t.Fatalf("len = %d, want %d", len(all), 2*perHandle)
	}
}

// seedMixed stores requests for two parents, some answered, all sharing one timestamp.
func seedMixed(t *testing.T, s RequestStore) []string {
	t.Helper()
	ctx := context.Background()
	var ids []string
	for i, email := range []string{"p@x.com", "q@x.com", "p@x.com", "q@x.com", "p@x.com"} {
		in := anaInput()
		in.ParentEmail = email
		if i%2 == 1 {
			in.Type = domain.RequestCheckout
		}
		created, err := s.Create(ctx, in)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, created.ID)
	}
	if _, err := s.Update(ctx, ids[0], domain.StatusApproved, "✅ CONFIRMED: Ana has checked in to school at 08:15."); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if _, err := s.Update(ctx, ids[3], domain.StatusRejected, "❌ Unable to confirm status for Ana at this time."); err != nil {
		t.Fatalf("reject: %v", err)
	}
	return ids
}

func assertListIdempotent(t *testing.T, s RequestStore, ids []string) {
	t.Helper()
	ctx := context.Background()
	for _, filter := range []domain.RequestFilter{{}, {ParentEmail: "p@x.com"}} {
		first, err := s.List(ctx, filter)
		if err != nil {
			t.Fatalf("list %+v: %v", filter, err)
		}
		second, err := s.List(ctx, filter)
		if err != nil {
			t.Fatalf("list %+v: %v", filter, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("list %+v changed between calls:\n%+v\n%+v", filter, first, second)
		}
	}

	// equal timestamps keep creation order, newest first
	all, _ := s.List(ctx, domain.RequestFilter{})
	if len(all) != len(ids) {
		t.Fatalf("len = %d, want %d", len(all), len(ids))
	}
	for i, r := range all {
		if want := ids[len(ids)-1-i]; r.ID != want {
			t.Fatalf("all[%d] = %s, want %s", i, r.ID, want)
		}
	}
}

func TestLocalListIsIdempotent(t *testing.T) {
	l := openTestLocal(t)
	fixed := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	ids := seedMixed(t, l)
	assertListIdempotent(t, l, ids)
}
