// Package search owns the dog search filters and the current page of
// results. Every search is tagged with an increasing sequence number and a
// completion only lands if no later search has landed before it, so a slow
// stale response never overwrites a fresher one.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/dogmatch/internal/logger"
	"github.com/patric-chuzhbe/dogmatch/internal/models"
	"github.com/patric-chuzhbe/dogmatch/internal/validation"
)

const (
	msgBreedsFailed   = "Failed to fetch dog breeds"
	msgSearchFailed   = "Failed to search for dogs"
	msgLocationFailed = "Failed to search for locations"
)

var (
	// ErrPageOutOfRange is returned by ChangePage for a page outside 1..TotalPages.
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrSamePage is returned by ChangePage for the page already shown.
	ErrSamePage = errors.New("already on that page")
	// ErrSearchInFlight is returned by ChangePage while a search is running.
	ErrSearchInFlight = errors.New("a search is already in flight")
)

type dogsAPI interface {
	GetBreeds(ctx context.Context) ([]string, error)
	Search(ctx context.Context, params models.SearchParams) (*models.SearchResults, error)
	GetDogs(ctx context.Context, ids []string) ([]models.Dog, error)
	SearchLocations(ctx context.Context, params models.LocationSearchParams) (*models.LocationSearchResults, error)
}

// Filters is the user-selected part of a search.
type Filters struct {
	Breeds   []string
	ZipCodes []string
	AgeMin   *int
	AgeMax   *int
	Sort     models.Sort
}

func (f Filters) clone() Filters {
	out := f
	out.Breeds = append([]string(nil), f.Breeds...)
	out.ZipCodes = append([]string(nil), f.ZipCodes...)
	if f.AgeMin != nil {
		out.AgeMin = models.Ptr(*f.AgeMin)
	}
	if f.AgeMax != nil {
		out.AgeMax = models.Ptr(*f.AgeMax)
	}
	return out
}

// State is a snapshot of the controller.
type State struct {
	Filters    Filters
	Page       int
	TotalPages int
	Total      int
	Dogs       []models.Dog
	HasNext    bool
	HasPrev    bool
	Loading    bool
	Err        string

	// NoLocationMatch is set while the zip filter comes from a location
	// search that found nothing. Results stay empty until the zip filter
	// changes again.
	NoLocationMatch bool
}

// Controller holds the filters, the current page and the last applied
// results. It is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	api      dogsAPI
	filters  Filters
	page     int
	results  *models.SearchResults
	dogs     []models.Dog
	issued   uint64
	applied  uint64
	inFlight int
	lastErr  string
	breeds   []string
	log      *zap.SugaredLogger

	locationMiss bool
}

// New returns a controller on page 1 with the default sort and no filters.
// Nothing is fetched until the first search.
func New(api dogsAPI) *Controller {
	return &Controller{
		api:     api,
		filters: Filters{Sort: models.DefaultSort},
		page:    1,
		dogs:    []models.Dog{},
		log:     logger.Named("search"),
	}
}

// Search runs the search for the current filters and page.
func (c *Controller) Search(ctx context.Context) error {
	return c.run(ctx)
}

// Retry repeats the search for the current page after a failure.
func (c *Controller) Retry(ctx context.Context) error {
	return c.run(ctx)
}

// SetFilters replaces every filter at once, returns to page 1 and searches.
func (c *Controller) SetFilters(ctx context.Context, filters Filters) error {
	if err := validation.AgeRange(filters.AgeMin, filters.AgeMax); err != nil {
		return c.reject(err)
	}
	for _, zip := range filters.ZipCodes {
		if err := validation.ZipCode(zip); err != nil {
			return c.reject(err)
		}
	}
	if filters.Sort == (models.Sort{}) {
		filters.Sort = models.DefaultSort
	}
	if !filters.Sort.Valid() {
		return c.reject(&validation.Error{Field: "sort", Message: fmt.Sprintf("unknown sort %q", filters.Sort)})
	}

	next := filters.clone()
	next.Breeds = funk.UniqString(next.Breeds)
	next.ZipCodes = funk.UniqString(next.ZipCodes)

	return c.changeZipCodes(ctx, func(f *Filters) { *f = next })
}

// ToggleBreed selects breed, or deselects it when already selected.
func (c *Controller) ToggleBreed(ctx context.Context, breed string) error {
	return c.changeFilters(ctx, func(f *Filters) {
		if funk.ContainsString(f.Breeds, breed) {
			f.Breeds = without(f.Breeds, breed)
			return
		}
		f.Breeds = append(f.Breeds, breed)
	})
}

// ClearBreeds deselects every breed.
func (c *Controller) ClearBreeds(ctx context.Context) error {
	return c.changeFilters(ctx, func(f *Filters) { f.Breeds = nil })
}

// AddZipCode adds a 5-digit zip code to the filter.
func (c *Controller) AddZipCode(ctx context.Context, zip string) error {
	if err := validation.ZipCode(zip); err != nil {
		return c.reject(err)
	}

	return c.changeZipCodes(ctx, func(f *Filters) {
		if !funk.ContainsString(f.ZipCodes, zip) {
			f.ZipCodes = append(f.ZipCodes, zip)
		}
	})
}

// RemoveZipCode drops zip from the filter.
func (c *Controller) RemoveZipCode(ctx context.Context, zip string) error {
	return c.changeZipCodes(ctx, func(f *Filters) { f.ZipCodes = without(f.ZipCodes, zip) })
}

// SetAgeRange sets the optional age bounds.
func (c *Controller) SetAgeRange(ctx context.Context, minAge, maxAge *int) error {
	if err := validation.AgeRange(minAge, maxAge); err != nil {
		return c.reject(err)
	}

	return c.changeFilters(ctx, func(f *Filters) {
		f.AgeMin, f.AgeMax = minAge, maxAge
	})
}

// SetSort changes the sort order of the results.
func (c *Controller) SetSort(ctx context.Context, sort models.Sort) error {
	if !sort.Valid() {
		return c.reject(&validation.Error{Field: "sort", Message: fmt.Sprintf("unknown sort %q", sort)})
	}

	return c.changeFilters(ctx, func(f *Filters) { f.Sort = sort })
}

// FilterByLocation replaces the zip code filter with the zip codes of the
// locations matching params. When no location matches, the zip filter is
// cleared and the results become empty without a search request; they stay
// empty until the zip filter is changed again.
func (c *Controller) FilterByLocation(ctx context.Context, params models.LocationSearchParams) error {
	found, err := c.api.SearchLocations(ctx, params)
	if err != nil {
		c.log.Errorw("searching locations", zap.Error(err))
		c.setErr(fmt.Sprintf("%s: %v", msgLocationFailed, err))
		return fmt.Errorf("searching locations: %w", err)
	}
	if len(found.Results) == 0 {
		return c.changeFilters(ctx, func(f *Filters) {
			f.ZipCodes = nil
			c.locationMiss = true
		})
	}

	zips := funk.UniqString(funk.Map(found.Results, func(location models.Location) string {
		return location.ZipCode
	}).([]string))

	return c.changeZipCodes(ctx, func(f *Filters) { f.ZipCodes = zips })
}

// ChangePage moves to page and searches. The page must exist, differ from the
// current one and no search may be running.
func (c *Controller) ChangePage(ctx context.Context, page int) error {
	c.mu.Lock()
	total := 0
	if c.results != nil {
		total = c.results.Total
	}
	switch {
	case page < 1 || page > TotalPages(total):
		c.mu.Unlock()
		return fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, page, TotalPages(total))
	case page == c.page:
		c.mu.Unlock()
		return ErrSamePage
	case c.inFlight > 0:
		c.mu.Unlock()
		return ErrSearchInFlight
	}
	c.page = page
	c.mu.Unlock()

	return c.run(ctx)
}

func (c *Controller) changeFilters(ctx context.Context, change func(*Filters)) error {
	c.mu.Lock()
	change(&c.filters)
	c.page = 1
	c.mu.Unlock()

	return c.run(ctx)
}

// changeZipCodes is changeFilters for changes that replace the zip filter,
// which lifts an earlier location miss.
func (c *Controller) changeZipCodes(ctx context.Context, change func(*Filters)) error {
	return c.changeFilters(ctx, func(f *Filters) {
		c.locationMiss = false
		change(f)
	})
}

func (c *Controller) reject(err error) error {
	c.setErr(err.Error())
	return err
}

func (c *Controller) setErr(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = msg
}

func (c *Controller) params() models.SearchParams {
	params := models.SearchParams{
		Breeds:   append([]string(nil), c.filters.Breeds...),
		ZipCodes: append([]string(nil), c.filters.ZipCodes...),
		AgeMin:   c.filters.AgeMin,
		AgeMax:   c.filters.AgeMax,
		Size:     models.Ptr(PageSize),
		Sort:     c.filters.Sort.String(),
	}
	if c.page > 1 {
		params.From = models.Ptr(From(c.page))
	}

	return params
}

func (c *Controller) run(ctx context.Context) error {
	c.mu.Lock()
	c.issued++
	seq := c.issued
	if c.locationMiss {
		c.applied = seq
		c.results = &models.SearchResults{ResultIDs: []string{}}
		c.dogs = []models.Dog{}
		c.lastErr = ""
		c.mu.Unlock()
		return nil
	}
	params := c.params()
	c.inFlight++
	c.mu.Unlock()

	results, dogs, err := c.fetch(ctx, params)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight--

	if seq <= c.applied {
		c.log.Debugw("dropping stale search result", "seq", seq, "applied", c.applied)
		return err
	}
	c.applied = seq

	if err != nil {
		c.log.Errorw("search failed", "seq", seq, zap.Error(err))
		c.lastErr = fmt.Sprintf("%s: %v", msgSearchFailed, err)
		return err
	}

	c.results = results
	c.dogs = dogs
	c.lastErr = ""

	return nil
}

func (c *Controller) fetch(
	ctx context.Context,
	params models.SearchParams,
) (*models.SearchResults, []models.Dog, error) {
	results, err := c.api.Search(ctx, params)
	if err != nil {
		return nil, nil, fmt.Errorf("searching dogs: %w", err)
	}
	if len(results.ResultIDs) == 0 {
		return results, []models.Dog{}, nil
	}

	dogs, err := c.api.GetDogs(ctx, results.ResultIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching dogs: %w", err)
	}

	return results, orderByIDs(dogs, results.ResultIDs), nil
}

// orderByIDs arranges dogs in ids order, skipping ids with no record.
func orderByIDs(dogs []models.Dog, ids []string) []models.Dog {
	byID := make(map[string]models.Dog, len(dogs))
	for _, dog := range dogs {
		byID[dog.ID] = dog
	}

	ordered := make([]models.Dog, 0, len(ids))
	for _, id := range ids {
		if dog, ok := byID[id]; ok {
			ordered = append(ordered, dog)
		}
	}

	return ordered
}

func without(values []string, drop string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != drop {
			out = append(out, v)
		}
	}
	return out
}

// Page returns the current 1-based page.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// State returns a copy of the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := State{
		Filters:    c.filters.clone(),
		Page:       c.page,
		TotalPages: 1,
		Dogs:       append([]models.Dog{}, c.dogs...),
		Loading:    c.inFlight > 0,
		Err:        c.lastErr,

		NoLocationMatch: c.locationMiss,
	}
	if c.results != nil {
		state.Total = c.results.Total
		state.TotalPages = TotalPages(c.results.Total)
		state.HasNext = c.results.HasNext()
		state.HasPrev = c.results.HasPrev()
	}

	return state
}
