package hub

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"perangkat-desa-backend/internal/model"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu    sync.Mutex
	items []model.Perangkat
}

func (m *memStore) add(p model.Perangkat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uint(len(m.items) + 1)
	m.items = append(m.items, p)
}

func (m *memStore) remove(id uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.items {
		if p.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return
		}
	}
}

func (m *memStore) load(_ context.Context, scope string) ([]model.PerangkatView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PerangkatView
	for _, p := range m.items {
		if scope == ScopeAll || p.Desa == scope {
			out = append(out, model.NewPerangkatView(p))
		}
	}
	return out, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func startHub(t *testing.T, store *memStore) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := New(store.load, quietLogger())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h
}

func next(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.C:
		require.True(t, ok, "channel tertutup")
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot tidak diterima")
	}
	return Snapshot{}
}

func names(snap Snapshot) []string {
	var out []string
	for _, v := range snap.Items {
		out = append(out, v.Nama)
	}
	return out
}

func TestHub_CreateThenDeleteVisibleWithoutRefresh(t *testing.T) {
	store := &memStore{}
	h := startHub(t, store)

	sub, err := h.Subscribe(ScopeAll)
	require.NoError(t, err)
	defer sub.Close()

	initial := next(t, sub)
	assert.Empty(t, initial.Items)

	store.add(model.Perangkat{Desa: "Klapa", Nama: "Budi"})
	h.Publish("Klapa")
	assert.Equal(t, []string{"Budi"}, names(next(t, sub)))

	store.remove(1)
	h.Publish("Klapa")
	assert.Empty(t, next(t, sub).Items)
}

func TestHub_ScopedSubscriberOnlySeesOwnDesa(t *testing.T) {
	store := &memStore{}
	store.add(model.Perangkat{Desa: "Klapa", Nama: "Budi"})
	store.add(model.Perangkat{Desa: "Tlaga", Nama: "Siti"})
	h := startHub(t, store)

	klapa, err := h.Subscribe("Klapa")
	require.NoError(t, err)
	defer klapa.Close()
	assert.Equal(t, []string{"Budi"}, names(next(t, klapa)))

	all, err := h.Subscribe(ScopeAll)
	require.NoError(t, err)
	defer all.Close()
	assert.Len(t, next(t, all).Items, 2)

	// Perubahan di Tlaga tidak dikirim ke subscriber Klapa
	store.add(model.Perangkat{Desa: "Tlaga", Nama: "Agus"})
	h.Publish("Tlaga")
	assert.Len(t, next(t, all).Items, 3)

	store.add(model.Perangkat{Desa: "Klapa", Nama: "Rina"})
	h.Publish("Klapa")
	snap := next(t, klapa)
	assert.Equal(t, "Klapa", snap.Scope)
	assert.Equal(t, []string{"Budi", "Rina"}, names(snap))
}

func TestHub_CloseAndStop(t *testing.T) {
	store := &memStore{}
	ctx, cancel := context.WithCancel(context.Background())
	h := New(store.load, quietLogger())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()

	sub, err := h.Subscribe(ScopeAll)
	require.NoError(t, err)
	next(t, sub)
	sub.Close()
	sub.Close()

	_, ok := <-sub.C
	assert.False(t, ok)

	other, err := h.Subscribe("Klapa")
	require.NoError(t, err)
	next(t, other)

	cancel()
	<-stopped
	_, ok = <-other.C
	assert.False(t, ok)

	_, err = h.Subscribe(ScopeAll)
	assert.ErrorIs(t, err, ErrClosed)
	h.Publish("Klapa")
	other.Close()
}
