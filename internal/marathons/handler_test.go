package marathons

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recepoint/backend/internal/auth"
	"github.com/recepoint/backend/internal/middleware"
	"github.com/recepoint/backend/internal/models"
)

type fakeStore struct {
	byID          map[uuid.UUID]models.Marathon
	created       []*models.Marathon
	deleted       []uuid.UUID
	lastAscending bool
	err           error
}

func newFakeStore(list ...models.Marathon) *fakeStore {
	f := &fakeStore{byID: make(map[uuid.UUID]models.Marathon)}
	for _, m := range list {
		f.byID[m.ID] = m
	}
	return f
}

func (f *fakeStore) Create(_ context.Context, m *models.Marathon) error {
	if f.err != nil {
		return f.err
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	f.byID[m.ID] = *m
	f.created = append(f.created, m)
	return nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*models.Marathon, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (f *fakeStore) ListByCreator(_ context.Context, email string, ascending bool) ([]models.Marathon, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastAscending = ascending
	var list []models.Marathon
	for _, m := range f.byID {
		if m.CreatorEmail == email {
			list = append(list, m)
		}
	}
	return list, nil
}

func (f *fakeStore) ListRecent(_ context.Context, limit int) ([]models.Marathon, error) {
	if f.err != nil {
		return nil, f.err
	}
	var list []models.Marathon
	for _, m := range f.byID {
		if len(list) == limit {
			break
		}
		list = append(list, m)
	}
	return list, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, u models.MarathonUpdate) (*models.Marathon, error) {
	if f.err != nil {
		return nil, f.err
	}
	m, ok := f.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	m.Title, m.Image, m.Location, m.Distance, m.Description = u.Title, u.Image, u.Location, u.Distance, u.Description
	m.RegistrationStart, m.RegistrationEnd, m.MarathonStart = u.RegistrationStart, u.RegistrationEnd, u.MarathonStart
	f.byID[id] = m
	return &m, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

var testTokens = auth.NewTokenService("test-secret", 20)

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, nil, nil)
	r := gin.New()
	r.GET("/limitMarathons", h.ListRecent)
	r.GET("/marathons/:id", h.GetByID)
	r.PUT("/marathonUpdate/:id", h.Update)
	r.DELETE("/marathon/:id", h.Delete)
	gated := r.Group("")
	gated.Use(middleware.Auth(testTokens))
	gated.GET("/marathons", h.List)
	gated.GET("/marathonsSpecific/:email", h.ListByCreator)
	gated.POST("/marathon", h.Create)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body, tokenEmail string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tokenEmail != "" {
		token, err := testTokens.Issue(tokenEmail)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func sampleMarathon(email string) models.Marathon {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Marathon{
		ID:                uuid.New(),
		Title:             "City Marathon",
		Location:          "Dhaka",
		Distance:          "42k",
		RegistrationStart: now,
		RegistrationEnd:   now.AddDate(0, 1, 0),
		MarathonStart:     now.AddDate(0, 2, 0),
		CreatorEmail:      email,
		CreatedAt:         now,
	}
}

func TestList_OwnerCheck(t *testing.T) {
	store := newFakeStore(sampleMarathon("owner@example.com"))
	router := newTestRouter(store)

	tests := []struct {
		name       string
		path       string
		tokenEmail string
		wantStatus int
	}{
		{
			name:       "owner sees own marathons",
			path:       "/marathons?email=owner@example.com",
			tokenEmail: "owner@example.com",
			wantStatus: http.StatusOK,
		},
		{
			name:       "different identity is forbidden",
			path:       "/marathons?email=owner@example.com",
			tokenEmail: "intruder@example.com",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "no token is unauthenticated",
			path:       "/marathons?email=owner@example.com",
			tokenEmail: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing email query",
			path:       "/marathons",
			tokenEmail: "owner@example.com",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(t, router, http.MethodGet, tt.path, "", tt.tokenEmail)
			require.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus != http.StatusOK {
				var body struct {
					Success bool            `json:"success"`
					Data    json.RawMessage `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
				assert.False(t, body.Success)
				assert.Empty(t, body.Data, "failed request must not leak data")
			}
		})
	}
}

func TestList_SortParam(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/marathons?email=owner@example.com&sort=asc", "", "owner@example.com")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, store.lastAscending)

	rr = doRequest(t, router, http.MethodGet, "/marathons?email=owner@example.com&sort=desc", "", "owner@example.com")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, store.lastAscending)
}

func TestListByCreator_OwnerCheck(t *testing.T) {
	store := newFakeStore(sampleMarathon("owner@example.com"))
	router := newTestRouter(store)

	rr := doRequest(t, router, http.MethodGet, "/marathonsSpecific/owner@example.com", "", "owner@example.com")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = doRequest(t, router, http.MethodGet, "/marathonsSpecific/owner@example.com", "", "intruder@example.com")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestCreate(t *testing.T) {
	now := time.Now().UTC().Format(time.RFC3339)
	body := `{"title":"City Marathon","creator_email":"owner@example.com",` +
		`"registration_start":"` + now + `","registration_end":"` + now + `","marathon_start":"` + now + `"}`

	t.Run("creator matching token creates marathon", func(t *testing.T) {
		store := newFakeStore()
		router := newTestRouter(store)
		rr := doRequest(t, router, http.MethodPost, "/marathon", body, "owner@example.com")
		require.Equal(t, http.StatusCreated, rr.Code)
		require.Len(t, store.created, 1)
		assert.Equal(t, "owner@example.com", store.created[0].CreatorEmail)
		assert.Zero(t, store.created[0].TotalRegistrationCount)
	})

	t.Run("creator mismatch is forbidden", func(t *testing.T) {
		store := newFakeStore()
		router := newTestRouter(store)
		rr := doRequest(t, router, http.MethodPost, "/marathon", body, "intruder@example.com")
		require.Equal(t, http.StatusForbidden, rr.Code)
		assert.Empty(t, store.created)
	})

	t.Run("bad dates rejected", func(t *testing.T) {
		store := newFakeStore()
		router := newTestRouter(store)
		bad := `{"title":"X","creator_email":"owner@example.com",` +
			`"registration_start":"tomorrow","registration_end":"` + now + `","marathon_start":"` + now + `"}`
		rr := doRequest(t, router, http.MethodPost, "/marathon", bad, "owner@example.com")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetByID(t *testing.T) {
	m := sampleMarathon("owner@example.com")
	router := newTestRouter(newFakeStore(m))

	t.Run("round-trips the record", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodGet, "/marathons/"+m.ID.String(), "", "")
		require.Equal(t, http.StatusOK, rr.Code)
		var body struct {
			Data models.Marathon `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, m.ID, body.Data.ID)
		assert.Equal(t, m.Title, body.Data.Title)
		assert.Equal(t, m.CreatorEmail, body.Data.CreatorEmail)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodGet, "/marathons/"+uuid.NewString(), "", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		rr := doRequest(t, router, http.MethodGet, "/marathons/abc", "", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestListRecent(t *testing.T) {
	var list []models.Marathon
	for i := 0; i < 10; i++ {
		list = append(list, sampleMarathon("owner@example.com"))
	}
	router := newTestRouter(newFakeStore(list...))

	rr := doRequest(t, router, http.MethodGet, "/limitMarathons", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Data []models.Marathon `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Len(t, body.Data, recentLimit)
}

func TestUpdate_FullReplace(t *testing.T) {
	m := sampleMarathon("owner@example.com")
	store := newFakeStore(m)
	router := newTestRouter(store)

	now := time.Now().UTC().Format(time.RFC3339)
	body := `{"title":"Renamed","location":"Chittagong",` +
		`"registration_start":"` + now + `","registration_end":"` + now + `","marathon_start":"` + now + `"}`
	rr := doRequest(t, router, http.MethodPut, "/marathonUpdate/"+m.ID.String(), body, "")
	require.Equal(t, http.StatusOK, rr.Code)

	updated := store.byID[m.ID]
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "Chittagong", updated.Location)
	assert.Equal(t, m.CreatorEmail, updated.CreatorEmail, "creator identity must survive update")
}

func TestDelete(t *testing.T) {
	m := sampleMarathon("owner@example.com")
	store := newFakeStore(m)
	router := newTestRouter(store)

	rr := doRequest(t, router, http.MethodDelete, "/marathon/"+m.ID.String(), "", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []uuid.UUID{m.ID}, store.deleted)
}
