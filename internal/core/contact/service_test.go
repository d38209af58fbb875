package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ogurasousui/hr-employee-names/internal/core/query"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeContactRepo struct {
	contacts map[string]*Contact
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[string]*Contact)}
}

func (r *fakeContactRepo) Create(_ context.Context, c *Contact) (*Contact, error) {
	clone := *c
	r.contacts[c.ID] = &clone
	out := clone
	return &out, nil
}

func (r *fakeContactRepo) Update(_ context.Context, c *Contact) (*Contact, error) {
	if _, ok := r.contacts[c.ID]; !ok {
		return nil, ErrContactNotFound
	}
	clone := *c
	r.contacts[c.ID] = &clone
	out := clone
	return &out, nil
}

func (r *fakeContactRepo) FindByID(_ context.Context, id string) (*Contact, error) {
	c, ok := r.contacts[id]
	if !ok {
		return nil, ErrContactNotFound
	}
	clone := *c
	return &clone, nil
}

type recordingSyncer struct {
	calls   int
	name    string
	filter  query.Expr
	updated int
	err     error
}

func (s *recordingSyncer) PropagateName(_ context.Context, name string, filter query.Expr) (int, error) {
	s.calls++
	s.name = name
	s.filter = filter
	return s.updated, s.err
}

func newTestService(repo *fakeContactRepo, syncer EmployeeNameSyncer) *Service {
	return NewService(repo, syncer, &stubClock{now: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}, nil, nil)
}

func TestService_CreateContact(t *testing.T) {
	t.Parallel()

	repo := newFakeContactRepo()
	svc := newTestService(repo, nil)

	created, err := svc.CreateContact(context.Background(), CreateContactInput{Name: "  Jane Doe "})
	if err != nil {
		t.Fatalf("CreateContact returned error: %v", err)
	}
	if created.ID == "" || created.Name != "Jane Doe" {
		t.Fatalf("unexpected contact: %+v", created)
	}

	if _, err := svc.CreateContact(context.Background(), CreateContactInput{Name: " "}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
}

func TestService_UpdateContact_PropagatesWhenAllowed(t *testing.T) {
	t.Parallel()

	repo := newFakeContactRepo()
	syncer := &recordingSyncer{updated: 2}
	svc := newTestService(repo, syncer)

	created, _ := svc.CreateContact(context.Background(), CreateContactInput{Name: "Old Name"})

	name := "Jane Doe"
	result, err := svc.UpdateContact(context.Background(), UpdateContactInput{ID: created.ID, Name: &name}, SyncOptions{AllowEmployeeSync: true})
	if err != nil {
		t.Fatalf("UpdateContact returned error: %v", err)
	}

	if syncer.calls != 1 || syncer.name != "Jane Doe" {
		t.Fatalf("expected one propagation with new name, got %+v", syncer)
	}
	cond, ok := syncer.filter.(query.Cond)
	if !ok || cond.Field != "work_contact_id" || cond.Op != query.OpIn {
		t.Fatalf("unexpected filter: %#v", syncer.filter)
	}
	if ids, _ := query.StringValues(cond.Value); len(ids) != 1 || ids[0] != created.ID {
		t.Fatalf("expected filter on contact id, got %#v", cond.Value)
	}
	if !result.PropagationRan || result.EmployeesSynced != 2 || result.Contact.Name != "Jane Doe" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestService_UpdateContact_NoPropagation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts SyncOptions
	}{
		{name: "not allowed", opts: SyncOptions{}},
		{name: "allowed but skipped", opts: SyncOptions{AllowEmployeeSync: true, SkipEmployeeSync: true}},
		{name: "skip only", opts: SyncOptions{SkipEmployeeSync: true}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := newFakeContactRepo()
			syncer := &recordingSyncer{}
			svc := newTestService(repo, syncer)
			created, _ := svc.CreateContact(context.Background(), CreateContactInput{Name: "Old Name"})

			name := "Jane Doe"
			result, err := svc.UpdateContact(context.Background(), UpdateContactInput{ID: created.ID, Name: &name}, tt.opts)
			if err != nil {
				t.Fatalf("UpdateContact returned error: %v", err)
			}
			if syncer.calls != 0 || result.PropagationRan {
				t.Fatalf("expected no propagation, got %d calls", syncer.calls)
			}
			if repo.contacts[created.ID].Name != "Jane Doe" {
				t.Fatalf("expected contact name persisted")
			}
		})
	}
}

func TestService_UpdateContact_WithoutNameDoesNotPropagate(t *testing.T) {
	t.Parallel()

	repo := newFakeContactRepo()
	syncer := &recordingSyncer{}
	svc := newTestService(repo, syncer)
	created, _ := svc.CreateContact(context.Background(), CreateContactInput{Name: "Jane Doe"})

	if _, err := svc.UpdateContact(context.Background(), UpdateContactInput{ID: created.ID}, SyncOptions{AllowEmployeeSync: true}); err != nil {
		t.Fatalf("UpdateContact returned error: %v", err)
	}
	if syncer.calls != 0 {
		t.Fatalf("expected no propagation without a name change")
	}
}

func TestService_UpdateContact_Errors(t *testing.T) {
	t.Parallel()

	repo := newFakeContactRepo()
	boom := errors.New("employee store failed")
	svc := newTestService(repo, &recordingSyncer{err: boom})
	created, _ := svc.CreateContact(context.Background(), CreateContactInput{Name: "Jane Doe"})

	name := "John Smith"
	if _, err := svc.UpdateContact(context.Background(), UpdateContactInput{ID: created.ID, Name: &name}, SyncOptions{AllowEmployeeSync: true}); !errors.Is(err, boom) {
		t.Fatalf("expected syncer error to propagate, got %v", err)
	}

	blank := "  "
	if _, err := svc.UpdateContact(context.Background(), UpdateContactInput{ID: created.ID, Name: &blank}, SyncOptions{}); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("expected ErrInvalidName, got %v", err)
	}
	if _, err := svc.UpdateContact(context.Background(), UpdateContactInput{ID: ""}, SyncOptions{}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
	if _, err := svc.UpdateContact(context.Background(), UpdateContactInput{ID: "missing", Name: &name}, SyncOptions{}); !errors.Is(err, ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestService_GetContact(t *testing.T) {
	t.Parallel()

	repo := newFakeContactRepo()
	svc := newTestService(repo, nil)
	created, _ := svc.CreateContact(context.Background(), CreateContactInput{Name: "Jane Doe"})

	got, err := svc.GetContact(context.Background(), GetContactInput{ID: created.ID})
	if err != nil || got.Name != "Jane Doe" {
		t.Fatalf("GetContact returned %+v, %v", got, err)
	}
	if _, err := svc.GetContact(context.Background(), GetContactInput{}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}
