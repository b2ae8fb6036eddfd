package fakeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/dogmatch/internal/apiclient"
	"github.com/patric-chuzhbe/dogmatch/internal/models"
)

var testSigningKey = []byte("test-signing-key")

func newTestServer(t *testing.T, opts ...InitOption) (*httptest.Server, *Catalog) {
	t.Helper()

	catalog := SeedCatalog(60)
	srv := httptest.NewServer(New(catalog, testSigningKey, opts...).Handler())
	t.Cleanup(srv.Close)

	return srv, catalog
}

func loggedInClient(t *testing.T, srv *httptest.Server) *apiclient.Client {
	t.Helper()

	client, err := apiclient.New(srv.URL)
	require.NoError(t, err)
	require.NoError(t, client.Login(context.Background(), "Test User", "test@example.com"))

	return client
}

func TestSeedCatalogIsStable(t *testing.T) {
	first := SeedCatalog(30).Dogs()
	second := SeedCatalog(30).Dogs()

	assert.Equal(t, first, second)
	assert.Len(t, first, 30)
	for _, dog := range first {
		_, ok := SeedCatalog(30).Location(dog.ZipCode)
		assert.True(t, ok, dog.ZipCode)
	}
}

func TestRoutesRequireSession(t *testing.T) {
	srv, _ := newTestServer(t)
	client, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	_, err = client.GetBreeds(context.Background())
	var requestErr *apiclient.RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, http.StatusUnauthorized, requestErr.Status)
	assert.Equal(t, "Unauthorized", requestErr.Body)
}

func TestForgedTokenIsRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	client, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	other := New(SeedCatalog(1), []byte("another-key"))
	token, _, err := other.buildToken("Mallory", "mallory@example.com")
	require.NoError(t, err)
	client.SetCookies([]*http.Cookie{{Name: CookieName, Value: token}})

	_, err = client.GetBreeds(context.Background())
	var requestErr *apiclient.RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, http.StatusUnauthorized, requestErr.Status)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	srv, _ := newTestServer(t, WithClock(func() time.Time {
		return time.Now().Add(-2 * time.Hour)
	}))
	client := loggedInClient(t, srv)

	_, err := client.GetBreeds(context.Background())
	var requestErr *apiclient.RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, http.StatusUnauthorized, requestErr.Status)
}

func TestLoginValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	client, err := apiclient.New(srv.URL)
	require.NoError(t, err)

	err = client.Login(context.Background(), "Test User", "not-an-email")
	var requestErr *apiclient.RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, http.StatusBadRequest, requestErr.Status)
	assert.Contains(t, requestErr.Body, "email")
}

func TestLogoutEndsSession(t *testing.T) {
	srv, _ := newTestServer(t)
	client := loggedInClient(t, srv)
	ctx := context.Background()

	_, err := client.GetBreeds(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Logout(ctx))
	assert.Empty(t, client.Cookies())

	_, err = client.GetBreeds(ctx)
	assert.Error(t, err)
}

func TestBreeds(t *testing.T) {
	srv, catalog := newTestServer(t)
	client := loggedInClient(t, srv)

	breeds, err := client.GetBreeds(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.Breeds(), breeds)
	assert.Contains(t, breeds, "Labrador")
}

func TestSearchPaging(t *testing.T) {
	srv, _ := newTestServer(t)
	client := loggedInClient(t, srv)
	ctx := context.Background()

	first, err := client.Search(ctx, models.SearchParams{Size: models.Ptr(24)})
	require.NoError(t, err)
	assert.Equal(t, 60, first.Total)
	assert.Len(t, first.ResultIDs, 24)
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrev())

	next, err := url.Parse(*first.Next)
	require.NoError(t, err)
	assert.Equal(t, "24", next.Query().Get("from"))

	last, err := client.Search(ctx, models.SearchParams{Size: models.Ptr(24), From: models.Ptr(48)})
	require.NoError(t, err)
	assert.Len(t, last.ResultIDs, 12)
	assert.False(t, last.HasNext())
	assert.True(t, last.HasPrev())

	all, err := client.Search(ctx, models.SearchParams{})
	require.NoError(t, err)
	assert.Len(t, all.ResultIDs, defaultPageSize)
}

func TestSearchFiltersAndSort(t *testing.T) {
	srv, _ := newTestServer(t)
	client := loggedInClient(t, srv)
	ctx := context.Background()

	results, err := client.Search(ctx, models.SearchParams{
		Breeds: []string{"Pug", "Beagle"},
		AgeMin: models.Ptr(2),
		AgeMax: models.Ptr(10),
		Size:   models.Ptr(100),
		Sort:   "age:desc",
	})
	require.NoError(t, err)
	require.NotEmpty(t, results.ResultIDs)

	dogs, err := client.GetDogs(ctx, results.ResultIDs)
	require.NoError(t, err)
	require.Len(t, dogs, len(results.ResultIDs))

	byID := map[string]models.Dog{}
	for _, dog := range dogs {
		assert.Contains(t, []string{"Pug", "Beagle"}, dog.Breed)
		assert.GreaterOrEqual(t, dog.Age, 2)
		assert.LessOrEqual(t, dog.Age, 10)
		byID[dog.ID] = dog
	}
	for i := 1; i < len(results.ResultIDs); i++ {
		assert.GreaterOrEqual(t, byID[results.ResultIDs[i-1]].Age, byID[results.ResultIDs[i]].Age)
	}
}

func TestSearchRejectsBadQuery(t *testing.T) {
	srv, _ := newTestServer(t)
	client := loggedInClient(t, srv)
	ctx := context.Background()

	for name, params := range map[string]models.SearchParams{
		"bad sort":       {Sort: "weight:asc"},
		"window too big": {From: models.Ptr(9990), Size: models.Ptr(20)},
		"zero size":      {Size: models.Ptr(0)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := client.Search(ctx, params)
			var requestErr *apiclient.RequestError
			require.ErrorAs(t, err, &requestErr)
			assert.Equal(t, http.StatusBadRequest, requestErr.Status)
		})
	}
}

func TestDogsLimit(t *testing.T) {
	srv, _ := newTestServer(t)
	client := loggedInClient(t, srv)

	ids := make([]string, maxIDsPerCall+1)
	for i := range ids {
		ids[i] = "id"
	}

	_, err := client.GetDogs(context.Background(), ids)
	var requestErr *apiclient.RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, http.StatusBadRequest, requestErr.Status)
}

func TestMatch(t *testing.T) {
	srv, catalog := newTestServer(t)
	client := loggedInClient(t, srv)
	known := catalog.Dogs()[3].ID

	match, err := client.Match(context.Background(), []string{"unknown", known})
	require.NoError(t, err)
	assert.Equal(t, known, match.Match)

	match, err = client.Match(context.Background(), []string{"unknown"})
	require.NoError(t, err)
	assert.Empty(t, match.Match)
}

func TestLocations(t *testing.T) {
	srv, _ := newTestServer(t)
	client := loggedInClient(t, srv)
	ctx := context.Background()

	locations, err := client.GetLocations(ctx, []string{"10001", "00000", "98101"})
	require.NoError(t, err)
	require.Len(t, locations, 2)
	assert.Equal(t, "New York", locations[0].City)
	assert.Equal(t, "Seattle", locations[1].City)

	found, err := client.SearchLocations(ctx, models.LocationSearchParams{City: "new york", States: []string{"ny"}})
	require.NoError(t, err)
	assert.Equal(t, 2, found.Total)

	found, err = client.SearchLocations(ctx, models.LocationSearchParams{
		GeoBoundingBox: &models.GeoBoundingBox{
			TopLeft:     &models.Coordinates{Lat: 48, Lon: -125},
			BottomRight: &models.Coordinates{Lat: 37, Lon: -120},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, found.Total)
	for _, location := range found.Results {
		assert.Contains(t, []string{"Seattle", "San Francisco"}, location.City)
	}
}

func TestResponsesAreGzipped(t *testing.T) {
	srv, _ := newTestServer(t)

	login, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"name":"Test User","email":"test@example.com"}`).
		Post(srv.URL + "/auth/login")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, login.StatusCode())

	resp, err := resty.New().R().
		SetHeader("Accept-Encoding", "gzip").
		SetCookies(login.Cookies()).
		Get(srv.URL + "/dogs/breeds")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.Equal(t, "gzip", resp.Header().Get("Content-Encoding"))
}
