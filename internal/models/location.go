package models

// Location describes a US zip code.
type Location struct {
	ZipCode   string  `json:"zip_code"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	County    string  `json:"county"`
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// GeoBoundingBox restricts a location search to a rectangle. Either the four
// edges or two opposite corners are expected to be set.
type GeoBoundingBox struct {
	Top         *Coordinates `json:"top,omitempty"`
	Left        *Coordinates `json:"left,omitempty"`
	Bottom      *Coordinates `json:"bottom,omitempty"`
	Right       *Coordinates `json:"right,omitempty"`
	BottomLeft  *Coordinates `json:"bottom_left,omitempty"`
	TopLeft     *Coordinates `json:"top_left,omitempty"`
	BottomRight *Coordinates `json:"bottom_right,omitempty"`
	TopRight    *Coordinates `json:"top_right,omitempty"`
}

// LocationSearchParams is the body of POST /locations/search.
type LocationSearchParams struct {
	City           string          `json:"city,omitempty"`
	States         []string        `json:"states,omitempty"`
	GeoBoundingBox *GeoBoundingBox `json:"geoBoundingBox,omitempty"`
	Size           *int            `json:"size,omitempty"`
	From           *int            `json:"from,omitempty"`
}

// LocationSearchResults is one page of location search results.
type LocationSearchResults struct {
	Results []Location `json:"results"`
	Total   int        `json:"total"`
}
