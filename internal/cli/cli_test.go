package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/dogmatch/internal/app"
	"github.com/patric-chuzhbe/dogmatch/internal/config"
	"github.com/patric-chuzhbe/dogmatch/internal/db/memorystorage"
	"github.com/patric-chuzhbe/dogmatch/internal/fakeapi"
	"github.com/patric-chuzhbe/dogmatch/internal/matcher"
	"github.com/patric-chuzhbe/dogmatch/internal/validation"
)

type harness struct {
	t       *testing.T
	db      *memorystorage.MemoryStorage
	apiURL  string
	catalog *fakeapi.Catalog
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	catalog := fakeapi.SeedCatalog(60)
	srv := httptest.NewServer(fakeapi.New(catalog, []byte("cli-test-key")).Handler())
	t.Cleanup(srv.Close)

	db, err := memorystorage.New()
	require.NoError(t, err)

	return &harness{t: t, db: db, apiURL: srv.URL, catalog: catalog}
}

// run executes one command line as a fresh process would, sharing storage
// with earlier runs.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()

	root := NewRootCommand(
		WithConfigOptions(config.WithoutDotEnv()),
		WithAppOptions(app.WithStorage(h.db), app.WithoutLoggerInit()),
	)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--api=" + h.apiURL}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()

	out, err := h.run(args...)
	require.NoError(h.t, err, out)
	return out
}

func TestCommandsRequireLogin(t *testing.T) {
	h := newHarness(t)

	assert.Contains(t, h.mustRun("whoami"), "Not logged in")

	for _, args := range [][]string{
		{"search"},
		{"breeds"},
		{"match"},
		{"favorites", "add", "x"},
		{"locations", "lookup", "10001"},
	} {
		_, err := h.run(args...)
		assert.ErrorIs(t, err, errNotLoggedIn, args)
	}
}

func TestLoginValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("login", "--name", "Test User", "--email", "nope")
	assert.ErrorIs(t, err, validation.ErrInvalid)
	assert.Contains(t, h.mustRun("whoami"), "Not logged in")
}

func TestSessionFlow(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("login", "--name", "Test User", "--email", "test@example.com")
	assert.Contains(t, out, "Logged in as Test User <test@example.com>")
	assert.Contains(t, h.mustRun("whoami"), "Test User <test@example.com>")

	assert.Contains(t, h.mustRun("breeds", "--filter", "retr"), "Golden Retriever")

	out = h.mustRun("search", "--breed", "Pug", "--sort", "age:asc")
	assert.Contains(t, out, "Found 5 dogs")
	assert.Contains(t, out, "Pug")
	assert.NotContains(t, out, "Beagle")

	out = h.mustRun("search", "--page", "2")
	assert.Contains(t, out, "Found 60 dogs")
	assert.Contains(t, out, "Page 2 of 3: 1 [2] 3")

	_, err := h.run("search", "--page", "9")
	assert.Error(t, err)

	_, err = h.run("search", "--zip", "123")
	assert.ErrorIs(t, err, validation.ErrInvalid)

	out = h.mustRun("search", "--city", "Seattle")
	assert.Contains(t, out, "Found 6 dogs")
	assert.Contains(t, out, "98101")

	out = h.mustRun("search", "--city", "Nowhere", "--page", "2")
	assert.Contains(t, out, "No dogs match these filters")
	assert.NotContains(t, out, "Found")

	assert.Contains(t, h.mustRun("logout"), "Logged out")
	assert.Contains(t, h.mustRun("whoami"), "Not logged in")
}

func TestFavoritesAndMatch(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login", "--name", "Test User", "--email", "test@example.com")

	dogs := h.catalog.Dogs()
	first, second := dogs[0], dogs[1]

	_, err := h.run("favorites", "add", "no-such-dog")
	assert.ErrorContains(t, err, "no-such-dog")

	out := h.mustRun("favorites", "add", first.ID, second.ID, first.ID)
	assert.Contains(t, out, "Added "+first.Name)

	out = h.mustRun("favorites", "list")
	assert.Contains(t, out, first.ID)
	assert.Contains(t, out, second.ID)
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("\n"))-1)

	out = h.mustRun("search", "--breed", first.Breed)
	assert.Contains(t, out, "*  "+first.ID)

	out = h.mustRun("match")
	assert.Contains(t, out, "Your match: "+first.Name)
	assert.Contains(t, out, "Location: ")
	assert.Contains(t, out, first.ZipCode)

	assert.Contains(t, h.mustRun("favorites", "remove", first.ID, "absent"), "1 favorite(s) left")

	assert.Contains(t, h.mustRun("favorites", "clear"), "Favorites cleared")
	assert.Contains(t, h.mustRun("favorites", "list"), "No favorites yet")

	_, err = h.run("match")
	assert.ErrorIs(t, err, matcher.ErrNoFavorites)
}

func TestLocations(t *testing.T) {
	h := newHarness(t)
	h.mustRun("login", "--name", "Test User", "--email", "test@example.com")

	out := h.mustRun("locations", "lookup", "10001", "98101")
	assert.Contains(t, out, "New York")
	assert.Contains(t, out, "Seattle")

	_, err := h.run("locations", "lookup", "1000")
	assert.ErrorIs(t, err, validation.ErrInvalid)

	out = h.mustRun("locations", "search", "--state", "NY")
	assert.Contains(t, out, "Found 2 location(s)")
}

func TestPageLine(t *testing.T) {
	assert.Equal(t, "Page 1 of 3: [1] 2 3", pageLine(1, 3))
	assert.Equal(t, "Page 5 of 10: 1 ... 4 [5] 6 ... 10", pageLine(5, 10))
}
