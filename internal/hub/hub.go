// Package hub menyiarkan snapshot data perangkat ke subscriber live.
//
// Satu goroutine (Run) memegang seluruh state subscriber. Setiap perubahan
// data memicu pemuatan ulang snapshot per scope yang terdampak, lalu snapshot
// itu menggantikan list milik subscriber secara utuh.
package hub

import (
	"context"
	"sync"

	"perangkat-desa-backend/internal/metrics"
	"perangkat-desa-backend/internal/model"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ScopeAll adalah scope tanpa filter desa (admin kecamatan).
const ScopeAll = ""

const sendBuffer = 4

var ErrClosed = errors.New("hub sudah berhenti")

// Loader memuat snapshot lengkap untuk satu scope.
type Loader func(ctx context.Context, scope string) ([]model.PerangkatView, error)

type Snapshot struct {
	Scope string                `json:"scope"`
	Items []model.PerangkatView `json:"items"`
}

type subscriber struct {
	scope string
	send  chan Snapshot
}

// Subscription adalah langganan satu client. Baca snapshot dari C sampai
// channel ditutup, lalu panggil Close saat client pergi.
type Subscription struct {
	C     <-chan Snapshot
	hub   *Hub
	sub   *subscriber
	close sync.Once
}

func (s *Subscription) Close() {
	s.close.Do(func() {
		select {
		case s.hub.unregister <- s.sub:
		case <-s.hub.done:
		}
	})
}

type Hub struct {
	loader     Loader
	log        *logrus.Logger
	register   chan *subscriber
	unregister chan *subscriber
	changes    chan []string
	done       chan struct{}

	subscribers map[*subscriber]bool
}

func New(loader Loader, log *logrus.Logger) *Hub {
	return &Hub{
		loader:      loader,
		log:         log,
		register:    make(chan *subscriber),
		unregister:  make(chan *subscriber),
		changes:     make(chan []string, 64),
		done:        make(chan struct{}),
		subscribers: make(map[*subscriber]bool),
	}
}

// Subscribe mendaftarkan subscriber untuk scope (ScopeAll atau nama desa).
// Snapshot awal dikirim segera setelah terdaftar.
func (h *Hub) Subscribe(scope string) (*Subscription, error) {
	sub := &subscriber{scope: scope, send: make(chan Snapshot, sendBuffer)}
	select {
	case h.register <- sub:
		return &Subscription{C: sub.send, hub: h, sub: sub}, nil
	case <-h.done:
		return nil, ErrClosed
	}
}

// Publish memberi tahu hub bahwa data desa-desa ini berubah.
func (h *Hub) Publish(desa ...string) {
	select {
	case h.changes <- desa:
	case <-h.done:
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for sub := range h.subscribers {
			h.drop(sub)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-h.register:
			h.subscribers[sub] = true
			metrics.LiveSubscribers.Inc()
			h.log.WithField("scope", scopeLabel(sub.scope)).Debug("subscriber live terdaftar")
			if snap, err := h.load(ctx, sub.scope); err == nil {
				h.deliver(sub, snap)
			}
		case sub := <-h.unregister:
			if h.subscribers[sub] {
				h.drop(sub)
				h.log.WithField("scope", scopeLabel(sub.scope)).Debug("subscriber live keluar")
			}
		case desas := <-h.changes:
			h.broadcast(ctx, desas)
		}
	}
}

func (h *Hub) broadcast(ctx context.Context, desas []string) {
	affected := make(map[string]bool, len(desas))
	for _, d := range desas {
		affected[d] = true
	}

	// Satu query per scope, dipakai bersama oleh semua subscriber scope itu
	snapshots := make(map[string]*Snapshot)
	for sub := range h.subscribers {
		if sub.scope != ScopeAll && !affected[sub.scope] {
			continue
		}
		snap, ok := snapshots[sub.scope]
		if !ok {
			loaded, err := h.load(ctx, sub.scope)
			if err != nil {
				continue
			}
			snap = &loaded
			snapshots[sub.scope] = snap
		}
		h.deliver(sub, *snap)
	}
}

func (h *Hub) load(ctx context.Context, scope string) (Snapshot, error) {
	items, err := h.loader(ctx, scope)
	if err != nil {
		h.log.WithError(err).WithField("scope", scopeLabel(scope)).Error("gagal memuat snapshot live")
		return Snapshot{}, err
	}
	if items == nil {
		items = []model.PerangkatView{}
	}
	return Snapshot{Scope: scope, Items: items}, nil
}

// deliver mengirim tanpa blok; subscriber yang lambat diputus.
func (h *Hub) deliver(sub *subscriber, snap Snapshot) {
	select {
	case sub.send <- snap:
	default:
		h.log.WithField("scope", scopeLabel(sub.scope)).Warn("subscriber live lambat, koneksi diputus")
		h.drop(sub)
	}
}

func (h *Hub) drop(sub *subscriber) {
	delete(h.subscribers, sub)
	close(sub.send)
	metrics.LiveSubscribers.Dec()
}

func scopeLabel(scope string) string {
	if scope == ScopeAll {
		return "all"
	}
	return scope
}
