package features

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"ghasreport/internal/config"
	gh "ghasreport/internal/github"
	"ghasreport/internal/report"
)

// Key identifies a security feature. Values match the names accepted in
// FEATURES / --features.
type Key string

const (
	SecretScanning Key = config.FeatureSecretScanning
	CodeScanning   Key = config.FeatureCodeScanning
	Dependabot     Key = config.FeatureDependabot
)

// Target is the subject of a report run: a repository full name, an
// organization name, or an enterprise slug, depending on Scope.
type Target struct {
	Scope config.Scope
	Name  string
}

// Deps bundles what fetchers need to reach GitHub.
type Deps struct {
	Client *gh.Client

	// ServerURL is the web UI base URL, used for the GHES
	// all-repositories report in enterprise scope.
	ServerURL string

	// Concurrency bounds per-repository fan-out inside a single fetch.
	Concurrency int
}

// Fetcher retrieves one feature's alerts for a target and flattens them
// into report records. Implementations must return a *FeatureDisabledError
// (via ClassifyFetchError) when the target has the feature turned off, so
// the engine can skip instead of aborting.
type Fetcher interface {
	Key() Key
	Title() string
	Fetch(ctx context.Context, target Target, deps *Deps) ([]*report.Record, error)
}

var (
	registry = make(map[Key]Fetcher)
	mu       sync.RWMutex
)

func Register(f Fetcher) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[f.Key()]; exists {
		panic(fmt.Sprintf("feature %s already registered", f.Key()))
	}
	registry[f.Key()] = f
}

// Resolve returns the fetcher registered for key.
func Resolve(key Key) (Fetcher, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := registry[key]
	return f, ok
}

// List returns every registered fetcher in canonical feature order.
func List() []Fetcher {
	mu.RLock()
	defer mu.RUnlock()
	var fetchers []Fetcher
	for _, f := range registry {
		fetchers = append(fetchers, f)
	}
	sort.Slice(fetchers, func(i, j int) bool {
		return featureOrder(fetchers[i].Key()) < featureOrder(fetchers[j].Key())
	})
	return fetchers
}

func featureOrder(key Key) int {
	for i, name := range config.AllFeatures() {
		if Key(name) == key {
			return i
		}
	}
	return len(config.AllFeatures())
}
