// Package metrics exposes the domain-level Prometheus collectors of the
// quotes service. HTTP traffic metrics live in the middleware package; the
// collectors here count business events:
//
//   - quotes_likes_total{op}:          like/unlike outcomes (liked, unliked, already_liked, not_liked)
//   - quotes_created_total{status}:    quote creations by initial status name
//   - quotes_search_total{outcome}:    search calls (hit, miss, degraded)
//
// A nil *Recorder is valid and records nothing, so services can run without
// metrics in tests.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Like outcomes.
const (
	LikeLiked        = "liked"
	LikeUnliked      = "unliked"
	LikeAlreadyLiked = "already_liked"
	LikeNotLiked     = "not_liked"
)

// Search outcomes.
const (
	SearchHit      = "hit"
	SearchMiss     = "miss"
	SearchDegraded = "degraded"
)

// Recorder holds the domain collectors.
type Recorder struct {
	likes   *prometheus.CounterVec
	created *prometheus.CounterVec
	search  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. Collectors that are
// already registered (e.g. a second Recorder on the default registry) are
// reused.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		likes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_likes_total",
			Help: "Like and unlike operations by outcome.",
		}, []string{"op"}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_created_total",
			Help: "Quotes created, by initial moderation status.",
		}, []string{"status"}),
		search: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quotes_search_total",
			Help: "Search requests by outcome.",
		}, []string{"outcome"}),
	}
	if reg == nil {
		return r, nil
	}

	var err error
	if r.likes, err = register(reg, r.likes); err != nil {
		return nil, err
	}
	if r.created, err = register(reg, r.created); err != nil {
		return nil, err
	}
	if r.search, err = register(reg, r.search); err != nil {
		return nil, err
	}
	return r, nil
}

func register(reg prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

// Like counts one like/unlike outcome.
func (r *Recorder) Like(op string) {
	if r == nil {
		return
	}
	r.likes.WithLabelValues(op).Inc()
}

// QuoteCreated counts a created quote by its initial status name.
func (r *Recorder) QuoteCreated(status string) {
	if r == nil {
		return
	}
	r.created.WithLabelValues(status).Inc()
}

// Search counts one search outcome.
func (r *Recorder) Search(outcome string) {
	if r == nil {
		return
	}
	r.search.WithLabelValues(outcome).Inc()
}
