package registrations

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recepoint/backend/internal/marathons"
	"github.com/recepoint/backend/internal/models"
)

// fakeSubmitStore mimics the transactional submit: uniqueness on
// (marathon, email) and the counter increment happen atomically.
type fakeSubmitStore struct {
	mu     sync.Mutex
	keys   map[string]bool
	counts map[uuid.UUID]int
}

func newFakeSubmitStore() *fakeSubmitStore {
	return &fakeSubmitStore{keys: make(map[string]bool), counts: make(map[uuid.UUID]int)}
}

func (f *fakeSubmitStore) Submit(_ context.Context, reg *models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := reg.MarathonID.String() + "|" + reg.Email
	if f.keys[key] {
		return ErrDuplicate
	}
	f.keys[key] = true
	f.counts[reg.MarathonID]++
	reg.ID = uuid.New()
	reg.CreatedAt = time.Now()
	reg.UpdatedAt = reg.CreatedAt
	return nil
}

type fakeMarathonGetter struct {
	byID map[uuid.UUID]models.Marathon
}

func (f *fakeMarathonGetter) GetByID(_ context.Context, id uuid.UUID) (*models.Marathon, error) {
	m, ok := f.byID[id]
	if !ok {
		return nil, marathons.ErrNotFound
	}
	return &m, nil
}

func testMarathon() models.Marathon {
	return models.Marathon{
		ID:            uuid.New(),
		Title:         "City Marathon",
		MarathonStart: time.Date(2026, 11, 1, 6, 0, 0, 0, time.UTC),
	}
}

func TestWorkflowSubmit_Denormalizes(t *testing.T) {
	m := testMarathon()
	store := newFakeSubmitStore()
	w := NewWorkflow(store, &fakeMarathonGetter{byID: map[uuid.UUID]models.Marathon{m.ID: m}}, nil)

	reg, err := w.Submit(context.Background(), SubmitInput{
		MarathonID: m.ID,
		Email:      "runner@example.com",
		FirstName:  "Ada",
		LastName:   "Rahman",
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, reg.ID)
	assert.Equal(t, m.Title, reg.MarathonTitle)
	assert.Equal(t, m.MarathonStart, reg.MarathonStart)
	assert.Equal(t, 1, store.counts[m.ID])
}

func TestWorkflowSubmit_Duplicate(t *testing.T) {
	m := testMarathon()
	store := newFakeSubmitStore()
	w := NewWorkflow(store, &fakeMarathonGetter{byID: map[uuid.UUID]models.Marathon{m.ID: m}}, nil)

	in := SubmitInput{MarathonID: m.ID, Email: "runner@example.com", FirstName: "Ada"}
	_, err := w.Submit(context.Background(), in)
	require.NoError(t, err)

	_, err = w.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, store.counts[m.ID], "duplicate must leave the counter untouched")
}

func TestWorkflowSubmit_MarathonMissing(t *testing.T) {
	store := newFakeSubmitStore()
	w := NewWorkflow(store, &fakeMarathonGetter{byID: map[uuid.UUID]models.Marathon{}}, nil)

	_, err := w.Submit(context.Background(), SubmitInput{MarathonID: uuid.New(), Email: "runner@example.com"})
	assert.ErrorIs(t, err, marathons.ErrNotFound)
	assert.Empty(t, store.keys, "nothing may be persisted for a missing marathon")
}

func TestWorkflowSubmit_CounterMatchesDistinctRegistrations(t *testing.T) {
	m := testMarathon()
	store := newFakeSubmitStore()
	w := NewWorkflow(store, &fakeMarathonGetter{byID: map[uuid.UUID]models.Marathon{m.ID: m}}, nil)

	const n = 25
	for i := 0; i < n; i++ {
		_, err := w.Submit(context.Background(), SubmitInput{
			MarathonID: m.ID,
			Email:      fmt.Sprintf("runner%d@example.com", i),
		})
		require.NoError(t, err)
	}
	assert.Equal(t, n, store.counts[m.ID])
}

func TestWorkflowSubmit_ConcurrentSameKey(t *testing.T) {
	m := testMarathon()
	store := newFakeSubmitStore()
	w := NewWorkflow(store, &fakeMarathonGetter{byID: map[uuid.UUID]models.Marathon{m.ID: m}}, nil)

	const n = 32
	in := SubmitInput{MarathonID: m.ID, Email: "runner@example.com"}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.Submit(context.Background(), in)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrDuplicate):
			dup++
		}
	}
	assert.Equal(t, 1, ok, "exactly one submission wins")
	assert.Equal(t, n-1, dup)
	assert.Equal(t, 1, store.counts[m.ID])
}
