package signals_test

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/business/signals/domain"
	"github.com/fd1az/naijatrade/internal/apitest"
)

// signalBackend is an in-memory /signals implementation.
type signalBackend struct {
	*apitest.Backend
	mu      sync.Mutex
	seq     int
	signals map[string]domain.Signal
}

func newSignalBackend(seed ...domain.Signal) *signalBackend {
	b := &signalBackend{Backend: apitest.NewBackend(), signals: make(map[string]domain.Signal)}
	for _, s := range seed {
		b.signals[s.ID] = s
	}

	b.Handle(http.MethodGet, "/signals", b.list)
	b.Handle(http.MethodGet, "/signals/stats", b.stats)
	b.Handle(http.MethodPost, "/signals", b.create)
	b.Handle(http.MethodPut, "/signals/{id}", b.update)
	b.Handle(http.MethodDelete, "/signals/{id}", b.delete)
	return b
}

func openSignal(id, symbol string, created time.Time) domain.Signal {
	return domain.Signal{
		ID: id, AssetType: domain.AssetCrypto, AssetSymbol: symbol, Direction: domain.DirectionLong,
		EntryPrice: decimal.NewFromInt(100), Status: domain.StatusOpen, CreatedAt: created,
	}
}

func (b *signalBackend) list(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	q := r.URL.Query()
	var out []domain.Signal
	for _, s := range b.signals {
		if st := q.Get("status"); st != "" && string(s.Status) != st {
			continue
		}
		if at := q.Get("asset_type"); at != "" && string(s.AssetType) != at {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	total := len(out)
	if limit, _ := strconv.Atoi(q.Get("limit")); limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	apitest.JSON(w, http.StatusOK, domain.SignalList{Signals: out, Total: total})
}

func (b *signalBackend) stats(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := domain.Stats{TotalSignals: len(b.signals)}
	for _, s := range b.signals {
		if s.Status == domain.StatusOpen {
			st.OpenSignals++
		} else {
			st.ClosedSignals++
		}
	}
	apitest.JSON(w, http.StatusOK, st)
}

func (b *signalBackend) create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AssetType   domain.AssetType `json:"asset_type"`
		AssetSymbol string           `json:"asset_symbol"`
		Direction   domain.Direction `json:"direction"`
		EntryPrice  decimal.Decimal  `json:"entry_price"`
	}
	if err := apitest.Decode(r, &body); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	s := domain.Signal{
		ID: fmt.Sprintf("new-%d", b.seq), AssetType: body.AssetType, AssetSymbol: body.AssetSymbol,
		Direction: body.Direction, EntryPrice: body.EntryPrice, Status: domain.StatusOpen,
		CreatedAt: time.Now(),
	}
	b.signals[s.ID] = s
	apitest.JSON(w, http.StatusOK, s)
}

func (b *signalBackend) update(w http.ResponseWriter, r *http.Request) {
	var patch domain.Patch
	if err := apitest.Decode(r, &patch); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.signals[chi.URLParam(r, "id")]
	if !ok {
		apitest.Detail(w, http.StatusNotFound, "Signal not found")
		return
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.Result != nil {
		s.Result = *patch.Result
	}
	b.signals[s.ID] = s
	apitest.JSON(w, http.StatusOK, s)
}

func (b *signalBackend) delete(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := chi.URLParam(r, "id")
	if _, ok := b.signals[id]; !ok {
		apitest.Detail(w, http.StatusNotFound, "Signal not found")
		return
	}
	delete(b.signals, id)
	apitest.JSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
