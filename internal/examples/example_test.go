package examples

import (
	"context"
	"fmt"
	"net/http/httptest"

	"github.com/patric-chuzhbe/dogmatch/internal/apiclient"
	"github.com/patric-chuzhbe/dogmatch/internal/db/memorystorage"
	"github.com/patric-chuzhbe/dogmatch/internal/fakeapi"
	"github.com/patric-chuzhbe/dogmatch/internal/favorites"
	"github.com/patric-chuzhbe/dogmatch/internal/matcher"
	"github.com/patric-chuzhbe/dogmatch/internal/models"
	"github.com/patric-chuzhbe/dogmatch/internal/search"
	"github.com/patric-chuzhbe/dogmatch/internal/session"
)

var shelter = []models.Dog{
	{ID: "d-1", Name: "Rex", Breed: "Beagle", Age: 3, ZipCode: "10001"},
	{ID: "d-2", Name: "Ace", Breed: "Akita", Age: 7, ZipCode: "10001"},
	{ID: "d-3", Name: "Fido", Breed: "Beagle", Age: 1, ZipCode: "94103"},
}

func startService() (*httptest.Server, *apiclient.Client) {
	service := fakeapi.New(fakeapi.NewCatalog(shelter, nil), []byte("example-key"))
	server := httptest.NewServer(service.Handler())

	client, err := apiclient.New(server.URL)
	if err != nil {
		panic(err)
	}

	return server, client
}

// Example shows a whole visit: sign in, search, keep two favorites and
// ask the service for a match among them.
func Example() {
	ctx := context.Background()
	server, client := startService()
	defer server.Close()

	db, _ := memorystorage.New()

	sessionStore, err := session.New(ctx, client, db)
	if err != nil {
		panic(err)
	}
	if err := sessionStore.Login(ctx, "Jane", "jane@example.com"); err != nil {
		panic(err)
	}
	fmt.Println("signed in as", sessionStore.User().Name)

	controller := search.New(client)
	if err := controller.Search(ctx); err != nil {
		panic(err)
	}
	state := controller.State()
	fmt.Println("found", state.Total)
	for _, dog := range state.Dogs {
		fmt.Println(dog.Breed, dog.Name)
	}

	favoriteStore, err := favorites.New(ctx, db)
	if err != nil {
		panic(err)
	}
	_ = favoriteStore.Add(ctx, state.Dogs[2])
	_ = favoriteStore.Add(ctx, state.Dogs[0])

	match, err := matcher.New(client, favoriteStore).Generate(ctx)
	if err != nil {
		panic(err)
	}
	fmt.Println("match:", match.Name)

	// Output:
	// signed in as Jane
	// found 3
	// Akita Ace
	// Beagle Rex
	// Beagle Fido
	// match: Fido
}

// Example_filters narrows the search to one breed sorted by age.
func Example_filters() {
	ctx := context.Background()
	server, client := startService()
	defer server.Close()

	if err := client.Login(ctx, "Jane", "jane@example.com"); err != nil {
		panic(err)
	}

	controller := search.New(client)
	err := controller.SetFilters(ctx, search.Filters{
		Breeds: []string{"Beagle"},
		Sort:   models.Sort{Field: models.SortByAge, Order: models.SortAsc},
	})
	if err != nil {
		panic(err)
	}

	for _, dog := range controller.State().Dogs {
		fmt.Println(dog.Name, dog.Age)
	}

	// Output:
	// Fido 1
	// Rex 3
}

// Example_requestError shows how a rejected call surfaces to the caller.
func Example_requestError() {
	server, client := startService()
	defer server.Close()

	_, err := client.GetBreeds(context.Background())
	fmt.Println(err)

	// Output:
	// request failed with status 401: Unauthorized
}
