package fakeapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/dogmatch/internal/models"
)

var seedBreeds = []string{
	"Beagle", "Border Collie", "Boxer", "Chihuahua", "Dachshund", "German Shepherd",
	"Golden Retriever", "Labrador", "Poodle", "Pug", "Shiba Inu", "Siberian Husky",
}

var seedNames = []string{
	"Ace", "Bella", "Biscuit", "Coco", "Daisy", "Duke", "Ginger", "Hazel", "Juno", "Luna",
	"Maple", "Milo", "Nala", "Ollie", "Pepper", "Rex", "Rosie", "Scout", "Teddy", "Ziggy",
}

var seedLocations = []models.Location{
	{ZipCode: "02110", Latitude: 42.3576, Longitude: -71.0514, City: "Boston", State: "MA", County: "Suffolk"},
	{ZipCode: "10001", Latitude: 40.7506, Longitude: -73.9972, City: "New York", State: "NY", County: "New York"},
	{ZipCode: "10002", Latitude: 40.7157, Longitude: -73.9863, City: "New York", State: "NY", County: "New York"},
	{ZipCode: "19103", Latitude: 39.9525, Longitude: -75.1745, City: "Philadelphia", State: "PA", County: "Philadelphia"},
	{ZipCode: "60601", Latitude: 41.8858, Longitude: -87.6181, City: "Chicago", State: "IL", County: "Cook"},
	{ZipCode: "73301", Latitude: 30.2672, Longitude: -97.7431, City: "Austin", State: "TX", County: "Travis"},
	{ZipCode: "94103", Latitude: 37.7726, Longitude: -122.4099, City: "San Francisco", State: "CA", County: "San Francisco"},
	{ZipCode: "98101", Latitude: 47.6114, Longitude: -122.3305, City: "Seattle", State: "WA", County: "King"},
}

// dogNamespace keeps generated dog ids stable between runs.
var dogNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://dogmatch.local/dogs"))

// Catalog is the read-only data set the fake API serves.
type Catalog struct {
	dogs      []models.Dog
	byID      map[string]models.Dog
	locations map[string]models.Location
	zipOrder  []string
}

// NewCatalog indexes dogs and locations. Later duplicates of an id or zip
// code are ignored.
func NewCatalog(dogs []models.Dog, locations []models.Location) *Catalog {
	catalog := &Catalog{
		byID:      make(map[string]models.Dog, len(dogs)),
		locations: make(map[string]models.Location, len(locations)),
	}

	for _, dog := range dogs {
		if _, ok := catalog.byID[dog.ID]; ok {
			continue
		}
		catalog.byID[dog.ID] = dog
		catalog.dogs = append(catalog.dogs, dog)
	}
	for _, location := range locations {
		if _, ok := catalog.locations[location.ZipCode]; ok {
			continue
		}
		catalog.locations[location.ZipCode] = location
		catalog.zipOrder = append(catalog.zipOrder, location.ZipCode)
	}

	return catalog
}

// SeedCatalog generates count dogs spread across a fixed set of breeds,
// names and locations. The same count always yields the same catalog.
func SeedCatalog(count int) *Catalog {
	dogs := make([]models.Dog, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.NewSHA1(dogNamespace, []byte(fmt.Sprintf("dog-%d", i))).String()
		dogs = append(dogs, models.Dog{
			ID:      id,
			Name:    seedNames[(i*7)%len(seedNames)],
			Breed:   seedBreeds[i%len(seedBreeds)],
			Age:     (i/len(seedBreeds) + i*3) % 15,
			ZipCode: seedLocations[(i/3)%len(seedLocations)].ZipCode,
			Img:     "https://dogmatch.local/images/" + id + ".jpg",
		})
	}

	return NewCatalog(dogs, seedLocations)
}

// Breeds lists distinct breeds in alphabetical order.
func (c *Catalog) Breeds() []string {
	seen := map[string]struct{}{}
	breeds := []string{}
	for _, dog := range c.dogs {
		if _, ok := seen[dog.Breed]; ok {
			continue
		}
		seen[dog.Breed] = struct{}{}
		breeds = append(breeds, dog.Breed)
	}
	sort.Strings(breeds)

	return breeds
}

// Dogs returns every dog in catalog order.
func (c *Catalog) Dogs() []models.Dog {
	return append([]models.Dog{}, c.dogs...)
}

// Dog looks a dog up by id.
func (c *Catalog) Dog(id string) (models.Dog, bool) {
	dog, ok := c.byID[id]
	return dog, ok
}

// Location looks a zip code up.
func (c *Catalog) Location(zip string) (models.Location, bool) {
	location, ok := c.locations[zip]
	return location, ok
}

type dogQuery struct {
	breeds   map[string]struct{}
	zipCodes map[string]struct{}
	ageMin   *int
	ageMax   *int
	sort     models.Sort
}

func (q dogQuery) matches(dog models.Dog) bool {
	if len(q.breeds) > 0 {
		if _, ok := q.breeds[dog.Breed]; !ok {
			return false
		}
	}
	if len(q.zipCodes) > 0 {
		if _, ok := q.zipCodes[dog.ZipCode]; !ok {
			return false
		}
	}
	if q.ageMin != nil && dog.Age < *q.ageMin {
		return false
	}
	if q.ageMax != nil && dog.Age > *q.ageMax {
		return false
	}
	return true
}

// search returns the ids of every matching dog in sort order.
func (c *Catalog) search(q dogQuery) []string {
	matched := make([]models.Dog, 0, len(c.dogs))
	for _, dog := range c.dogs {
		if q.matches(dog) {
			matched = append(matched, dog)
		}
	}

	less := func(a, b models.Dog) int {
		switch q.sort.Field {
		case models.SortByName:
			return strings.Compare(a.Name, b.Name)
		case models.SortByAge:
			return a.Age - b.Age
		}
		return strings.Compare(a.Breed, b.Breed)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		cmp := less(matched[i], matched[j])
		if cmp == 0 {
			return matched[i].ID < matched[j].ID
		}
		if q.sort.Order == models.SortDesc {
			return cmp > 0
		}
		return cmp < 0
	})

	ids := make([]string, 0, len(matched))
	for _, dog := range matched {
		ids = append(ids, dog.ID)
	}

	return ids
}

func (c *Catalog) searchLocations(params models.LocationSearchParams) []models.Location {
	states := map[string]struct{}{}
	for _, state := range params.States {
		states[strings.ToUpper(state)] = struct{}{}
	}

	found := []models.Location{}
	for _, zip := range c.zipOrder {
		location := c.locations[zip]
		if params.City != "" && !strings.EqualFold(params.City, location.City) {
			continue
		}
		if len(states) > 0 {
			if _, ok := states[location.State]; !ok {
				continue
			}
		}
		if params.GeoBoundingBox != nil && !insideBox(*params.GeoBoundingBox, location) {
			continue
		}
		found = append(found, location)
	}

	return found
}

// insideBox accepts either the four edges or a pair of opposite corners.
func insideBox(box models.GeoBoundingBox, location models.Location) bool {
	var top, bottom, left, right *float64
	pick := func(dst **float64, v float64) {
		if *dst == nil {
			*dst = &v
		}
	}

	if box.Top != nil {
		pick(&top, box.Top.Lat)
	}
	if box.Bottom != nil {
		pick(&bottom, box.Bottom.Lat)
	}
	if box.Left != nil {
		pick(&left, box.Left.Lon)
	}
	if box.Right != nil {
		pick(&right, box.Right.Lon)
	}
	for _, corner := range []struct {
		c             *models.Coordinates
		isTop, isLeft bool
	}{
		{box.TopLeft, true, true},
		{box.TopRight, true, false},
		{box.BottomLeft, false, true},
		{box.BottomRight, false, false},
	} {
		if corner.c == nil {
			continue
		}
		if corner.isTop {
			pick(&top, corner.c.Lat)
		} else {
			pick(&bottom, corner.c.Lat)
		}
		if corner.isLeft {
			pick(&left, corner.c.Lon)
		} else {
			pick(&right, corner.c.Lon)
		}
	}

	if top != nil && location.Latitude > *top {
		return false
	}
	if bottom != nil && location.Latitude < *bottom {
		return false
	}
	if left != nil && location.Longitude < *left {
		return false
	}
	if right != nil && location.Longitude > *right {
		return false
	}
	return true
}
