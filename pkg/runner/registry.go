package runner

import (
	"sort"
	"sync"

	"github.com/aretw0/scripter/pkg/domain"
)

// liveRun is the registry entry of a run in progress.
type liveRun struct {
	record domain.RunRecord
	stats  func() domain.RunStats
	cancel func() bool
}

// registry tracks the runs in progress of a Runner.
type registry struct {
	mu   sync.Mutex
	runs map[string]*liveRun
}

func newRegistry() *registry {
	return &registry{runs: make(map[string]*liveRun)}
}

func (g *registry) add(id string, run *liveRun) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.runs[id] = run
}

func (g *registry) remove(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.runs, id)
}

func (g *registry) cancel(id string) error {
	g.mu.Lock()
	run, ok := g.runs[id]
	g.mu.Unlock()
	if !ok {
		return domain.ErrRunNotFound
	}
	run.cancel()
	return nil
}

func (g *registry) cancelAll() {
	g.mu.Lock()
	runs := make([]*liveRun, 0, len(g.runs))
	for _, run := range g.runs {
		runs = append(runs, run)
	}
	g.mu.Unlock()
	for _, run := range runs {
		run.cancel()
	}
}

// snapshot returns the record of a live run with its current counters.
func (g *registry) snapshot(id string) (*domain.RunRecord, bool) {
	g.mu.Lock()
	run, ok := g.runs[id]
	g.mu.Unlock()
	if !ok {
		return nil, false
	}
	rec := run.record
	rec.Stats = run.stats()
	return &rec, true
}

func (g *registry) ids() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]string, 0, len(g.runs))
	for id := range g.runs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
