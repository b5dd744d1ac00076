// Package versions collects the versions of tools and dependencies observed during a run,
// so they can be reported alongside the build.
package versions

import (
	"sync"

	"github.com/facette/natsort"

	"github.com/warptools/fwsetup/fsapi"
)

// Category classifies a reported version.
type Category string

const (
	CategoryTool      Category = "TOOL"
	CategorySubmodule Category = "SUBMODULE"
	CategoryPip       Category = "PIP"
	CategoryBinary    Category = "BINARY"
	CategoryInfo      Category = "INFO"
)

// Reporter accepts version reports. Reports are fire-and-forget.
type Reporter interface {
	ReportVersion(name string, version string, category Category)
}

// Entry is one reported version.
type Entry struct {
	Name     string
	Version  string
	Category Category
}

// Conflict records a name reported a second time with a different version.
type Conflict struct {
	Name     string
	Kept     string
	Rejected string
}

// Aggregator is an in-memory Reporter.
// The first version reported for a name wins.
type Aggregator struct {
	mu        sync.Mutex
	entries   map[string]Entry
	conflicts []Conflict
}

func NewAggregator() *Aggregator {
	return &Aggregator{entries: make(map[string]Entry)}
}

func (a *Aggregator) ReportVersion(name string, version string, category Category) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.entries == nil {
		a.entries = make(map[string]Entry)
	}
	if existing, ok := a.entries[name]; ok {
		if existing.Version != version {
			a.conflicts = append(a.conflicts, Conflict{Name: name, Kept: existing.Version, Rejected: version})
		}
		return
	}
	a.entries[name] = Entry{Name: name, Version: version, Category: category}
}

// Get returns the entry reported for name, if any.
func (a *Aggregator) Get(name string) (Entry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.entries[name]
	return e, ok
}

// Entries returns every entry ordered by name, with numbers in names compared naturally.
func (a *Aggregator) Entries() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	names := make([]string, 0, len(a.entries))
	for name := range a.entries {
		names = append(names, name)
	}
	natsort.Sort(names)
	result := make([]Entry, 0, len(names))
	for _, name := range names {
		result = append(result, a.entries[name])
	}
	return result
}

func (a *Aggregator) Conflicts() []Conflict {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Conflict(nil), a.conflicts...)
}

// Record converts the entries to their API form.
func (a *Aggregator) Record() []fsapi.VersionEntry {
	entries := a.Entries()
	result := make([]fsapi.VersionEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, fsapi.VersionEntry{Name: e.Name, Version: e.Version, Category: string(e.Category)})
	}
	return result
}
