package airdrops_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/naijatrade/business/airdrops/app"
	"github.com/fd1az/naijatrade/business/airdrops/domain"
	"github.com/fd1az/naijatrade/business/airdrops/infra/rest"
	"github.com/fd1az/naijatrade/internal/apitest"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/query"
)

type airdropBackend struct {
	*apitest.Backend
	mu       sync.Mutex
	seq      int
	airdrops map[string]domain.Airdrop
	order    []string
}

func newAirdropBackend(seed ...domain.Airdrop) *airdropBackend {
	b := &airdropBackend{Backend: apitest.NewBackend(), airdrops: make(map[string]domain.Airdrop)}
	for _, a := range seed {
		b.put(a)
	}
	b.Handle(http.MethodGet, "/airdrops", b.list)
	b.Handle(http.MethodGet, "/airdrops/{id}", b.get)
	b.Handle(http.MethodPost, "/airdrops", b.create)
	b.Handle(http.MethodPut, "/airdrops/{id}", b.update)
	b.Handle(http.MethodDelete, "/airdrops/{id}", b.delete)
	return b
}

func (b *airdropBackend) put(a domain.Airdrop) {
	if _, ok := b.airdrops[a.ID]; !ok {
		b.order = append(b.order, a.ID)
	}
	b.airdrops[a.ID] = a
}

func (b *airdropBackend) list(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := domain.AirdropList{Airdrops: []domain.Airdrop{}}
	for _, id := range b.order {
		a, ok := b.airdrops[id]
		if !ok {
			continue
		}
		if st := r.URL.Query().Get("status"); st != "" && string(a.Status) != st {
			continue
		}
		out.Airdrops = append(out.Airdrops, a)
	}
	out.Total = len(out.Airdrops)
	apitest.JSON(w, http.StatusOK, out)
}

func (b *airdropBackend) get(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.airdrops[chi.URLParam(r, "id")]
	if !ok {
		apitest.Detail(w, http.StatusNotFound, "Airdrop not found")
		return
	}
	apitest.JSON(w, http.StatusOK, a)
}

func (b *airdropBackend) create(w http.ResponseWriter, r *http.Request) {
	var form domain.Form
	if err := apitest.Decode(r, &form); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	a := domain.Airdrop{
		ID: fmt.Sprintf("a-%d", b.seq), Name: form.Name, Project: form.Project, Category: form.Category,
		Status: form.Status, Difficulty: form.Difficulty, Deadline: form.Deadline, CreatedAt: time.Now(),
	}
	b.put(a)
	apitest.JSON(w, http.StatusOK, a)
}

func (b *airdropBackend) update(w http.ResponseWriter, r *http.Request) {
	var patch domain.Patch
	if err := apitest.Decode(r, &patch); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.airdrops[chi.URLParam(r, "id")]
	if !ok {
		apitest.Detail(w, http.StatusNotFound, "Airdrop not found")
		return
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	b.put(a)
	apitest.JSON(w, http.StatusOK, a)
}

func (b *airdropBackend) delete(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	if _, ok := b.airdrops[id]; !ok {
		apitest.Detail(w, http.StatusNotFound, "Airdrop not found")
		return
	}
	delete(b.airdrops, id)
	apitest.JSON(w, http.StatusOK, map[string]string{"message": "Airdrop deleted"})
}

func newService(t *testing.T, b *airdropBackend) *app.Service {
	t.Helper()
	qc := query.NewClient(query.WithDefaults(query.StaleTime(time.Minute), query.RefetchInterval(0)))
	t.Cleanup(qc.Close)
	return app.NewService(rest.NewClient(b.Start(t)), qc)
}

func layerZero() domain.Airdrop {
	return domain.Airdrop{ID: "lz", Name: "LayerZero", Project: "LayerZero Labs", Category: "layer1", Status: domain.StatusActive, Difficulty: domain.DifficultyHard}
}

func TestDeleteTwice(t *testing.T) {
	b := newAirdropBackend(layerZero())
	svc := newService(t, b)
	ctx := context.Background()

	page, err := svc.Airdrops(ctx, domain.Filter{})
	require.NoError(t, err)
	require.True(t, page.Has("lz"))
	_, err = svc.Airdrop(ctx, "lz")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "lz"))
	err = svc.Delete(ctx, "lz")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	page, err = svc.Airdrops(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.False(t, page.Has("lz"))

	_, err = svc.Airdrop(ctx, "lz")
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
	assert.Equal(t, 2, b.Calls(http.MethodGet, "/airdrops/{id}"))
}

func TestUpdateRefreshesItemAndCollections(t *testing.T) {
	b := newAirdropBackend(layerZero())
	svc := newService(t, b)
	ctx := context.Background()

	item := svc.WatchAirdrop("lz")
	defer item.Close()
	active := svc.WatchAirdrops(domain.Filter{Status: domain.StatusActive})
	defer active.Close()
	require.Eventually(t, func() bool {
		return item.Current().Status == query.StatusFresh && active.Current().Data.Has("lz")
	}, 2*time.Second, 5*time.Millisecond)

	_, err := svc.Update(ctx, "lz", *new(domain.Patch).SetStatus(domain.StatusEnded))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		st := item.Current()
		return !st.Fetching && st.Data.Status == domain.StatusEnded && !active.Current().Data.Has("lz")
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCreateRoundTrip(t *testing.T) {
	b := newAirdropBackend()
	svc := newService(t, b)
	ctx := context.Background()
	deadline := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(ctx, domain.NewForm().SetName("  "))
	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, 0, b.Calls(http.MethodPost, "/airdrops"))

	created, err := svc.Create(ctx, domain.NewForm().
		SetName("Scroll").
		SetProject("Scroll").
		SetCategory("layer2").
		SetDeadline(deadline))
	require.NoError(t, err)
	require.NotNil(t, created.Deadline)
	assert.Equal(t, deadline, created.Deadline.Time)
	assert.Equal(t, domain.DifficultyMedium, created.Difficulty)

	page, err := svc.Airdrops(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.True(t, page.Has(created.ID))
}

func TestDateAndDaysLeft(t *testing.T) {
	var a domain.Airdrop
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","deadline":"2026-10-20","start_date":null}`), &a))
	require.NotNil(t, a.Deadline)
	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, a.DaysLeft(now))
	assert.Equal(t, 0, a.DaysLeft(now.AddDate(0, 1, 0)))
	assert.Equal(t, -1, domain.Airdrop{}.DaysLeft(now))

	raw, err := json.Marshal(domain.Patch{Deadline: a.Deadline})
	require.NoError(t, err)
	assert.JSONEq(t, `{"deadline":"2026-10-20"}`, string(raw))
}
