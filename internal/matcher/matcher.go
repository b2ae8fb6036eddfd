// Package matcher asks the service to pick one dog among the favorites and
// resolves the winning id into a full record.
package matcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/dogmatch/internal/logger"
	"github.com/patric-chuzhbe/dogmatch/internal/models"
)

const msgMatchFailed = "Failed to generate a match"

// ErrNoFavorites is returned without any network call when there is nothing
// to match against.
var ErrNoFavorites = errors.New("no favorites to match")

type matchAPI interface {
	Match(ctx context.Context, ids []string) (*models.Match, error)
	GetDogs(ctx context.Context, ids []string) ([]models.Dog, error)
}

type favoriteIDs interface {
	IDs() []string
}

// State is a snapshot of the orchestrator.
type State struct {
	Dog     *models.Dog
	Loading bool
	Err     string
}

// Orchestrator asks the service to pick one dog among the favorites and
// keeps the last successful pick.
type Orchestrator struct {
	mu        sync.Mutex
	api       matchAPI
	favorites favoriteIDs
	matched   *models.Dog
	loading   bool
	lastErr   string
	log       *zap.SugaredLogger
}

// New returns an orchestrator that matches against the ids favorites lists.
func New(api matchAPI, favorites favoriteIDs) *Orchestrator {
	return &Orchestrator{
		api:       api,
		favorites: favorites,
		log:       logger.Named("matcher"),
	}
}

// Generate requests a match for the current favorites. It returns nil when
// the service picks no id. On failure the previously matched dog is kept.
func (o *Orchestrator) Generate(ctx context.Context) (*models.Dog, error) {
	ids := o.favorites.IDs()
	if len(ids) == 0 {
		o.mu.Lock()
		o.lastErr = ErrNoFavorites.Error()
		o.mu.Unlock()
		return nil, ErrNoFavorites
	}

	o.mu.Lock()
	o.loading = true
	o.mu.Unlock()

	dog, err := o.resolve(ctx, ids)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.loading = false

	if err != nil {
		o.log.Errorw("match failed", "candidates", len(ids), zap.Error(err))
		o.lastErr = fmt.Sprintf("%s: %v", msgMatchFailed, err)
		return nil, err
	}

	o.matched = dog
	o.lastErr = ""

	return copyDog(dog), nil
}

func (o *Orchestrator) resolve(ctx context.Context, ids []string) (*models.Dog, error) {
	match, err := o.api.Match(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("requesting match: %w", err)
	}
	if match.Match == "" {
		return nil, nil
	}

	dogs, err := o.api.GetDogs(ctx, []string{match.Match})
	if err != nil {
		return nil, fmt.Errorf("fetching matched dog: %w", err)
	}

	for i := range dogs {
		if dogs[i].ID == match.Match {
			return &dogs[i], nil
		}
	}

	return nil, nil
}

// Reset forgets the matched dog.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.matched = nil
	o.lastErr = ""
}

// State returns a copy of the matched dog, the loading flag and the last
// error message.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()

	return State{Dog: copyDog(o.matched), Loading: o.loading, Err: o.lastErr}
}

func copyDog(dog *models.Dog) *models.Dog {
	if dog == nil {
		return nil
	}
	out := *dog
	return &out
}
