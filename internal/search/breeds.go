package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/thoas/go-funk"
	"go.uber.org/zap"
)

// Breeds returns the breed catalogue, fetching it on first use.
func (c *Controller) Breeds(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	if c.breeds != nil {
		breeds := append([]string{}, c.breeds...)
		c.mu.Unlock()
		return breeds, nil
	}
	c.mu.Unlock()

	breeds, err := c.api.GetBreeds(ctx)
	if err != nil {
		c.log.Errorw("fetching breeds", zap.Error(err))
		c.mu.Lock()
		c.lastErr = fmt.Sprintf("%s: %v", msgBreedsFailed, err)
		c.mu.Unlock()
		return nil, fmt.Errorf("fetching breeds: %w", err)
	}
	if breeds == nil {
		breeds = []string{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.breeds = breeds

	return append([]string{}, breeds...), nil
}

// MatchBreeds keeps the breeds whose name contains term, ignoring case. An
// empty term keeps everything.
func MatchBreeds(breeds []string, term string) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return append([]string{}, breeds...)
	}

	return funk.Filter(breeds, func(breed string) bool {
		return strings.Contains(strings.ToLower(breed), term)
	}).([]string)
}
