package fakeapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/patric-chuzhbe/dogmatch/internal/models"
)

type searchResponse struct {
	ResultIDs []string `json:"resultIds"`
	Total     int      `json:"total"`
	Next      string   `json:"next,omitempty"`
	Prev      string   `json:"prev,omitempty"`
}

type locationSearchResponse struct {
	Results []models.Location `json:"results"`
	Total   int               `json:"total"`
}

func (s *Server) postLogin(response http.ResponseWriter, request *http.Request) {
	var form models.LoginRequest
	if err := decodeBody(request, &form); err != nil {
		writeText(response, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.validate.Struct(form); err != nil {
		var fieldErrors validator.ValidationErrors
		message := err.Error()
		if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
			message = fmt.Sprintf("%s failed %s validation", strings.ToLower(fieldErrors[0].Field()), fieldErrors[0].Tag())
		}
		writeText(response, http.StatusBadRequest, message)
		return
	}

	token, expiresAt, err := s.buildToken(form.Name, form.Email)
	if err != nil {
		s.log.Errorw("signing session token", "error", err)
		writeText(response, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	http.SetCookie(response, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeText(response, http.StatusOK, "OK")
}

func (s *Server) postLogout(response http.ResponseWriter, _ *http.Request) {
	http.SetCookie(response, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	response.WriteHeader(http.StatusNoContent)
}

func (s *Server) getBreeds(response http.ResponseWriter, _ *http.Request) {
	s.writeJSON(response, s.catalog.Breeds())
}

func parseOptionalInt(query url.Values, key string) (*int, error) {
	raw := query.Get(key)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return nil, fmt.Errorf("%s must be a non-negative integer", key)
	}

	return &value, nil
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func (s *Server) getSearch(response http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	ints := map[string]*int{}
	for _, key := range []string{"ageMin", "ageMax", "size", "from"} {
		value, err := parseOptionalInt(query, key)
		if err != nil {
			writeText(response, http.StatusBadRequest, err.Error())
			return
		}
		ints[key] = value
	}

	sort, err := models.ParseSort(query.Get("sort"))
	if err != nil {
		writeText(response, http.StatusBadRequest, err.Error())
		return
	}

	size, from := defaultPageSize, 0
	if ints["size"] != nil {
		size = *ints["size"]
	}
	if ints["from"] != nil {
		from = *ints["from"]
	}
	if size == 0 || from+size > maxResultWindow {
		writeText(response, http.StatusBadRequest, fmt.Sprintf("from + size must be between 1 and %d", maxResultWindow))
		return
	}

	ids := s.catalog.search(dogQuery{
		breeds:   toSet(query["breeds"]),
		zipCodes: toSet(query["zipCodes"]),
		ageMin:   ints["ageMin"],
		ageMax:   ints["ageMax"],
		sort:     sort,
	})

	result := searchResponse{ResultIDs: []string{}, Total: len(ids)}
	if from < len(ids) {
		end := from + size
		if end > len(ids) {
			end = len(ids)
		}
		result.ResultIDs = ids[from:end]
	}
	if from+size < len(ids) {
		result.Next = pageURL(query, from+size, size)
	}
	if from > 0 {
		prev := from - size
		if prev < 0 {
			prev = 0
		}
		result.Prev = pageURL(query, prev, size)
	}

	s.writeJSON(response, result)
}

func pageURL(query url.Values, from, size int) string {
	page := url.Values{}
	for key, values := range query {
		page[key] = append([]string(nil), values...)
	}
	page.Set("size", strconv.Itoa(size))
	page.Set("from", strconv.Itoa(from))

	return "/dogs/search?" + page.Encode()
}

func (s *Server) decodeIDs(response http.ResponseWriter, request *http.Request) ([]string, bool) {
	var ids []string
	if err := decodeBody(request, &ids); err != nil {
		writeText(response, http.StatusBadRequest, err.Error())
		return nil, false
	}
	if len(ids) > maxIDsPerCall {
		writeText(response, http.StatusBadRequest, fmt.Sprintf("at most %d ids per request", maxIDsPerCall))
		return nil, false
	}

	return ids, true
}

// postDogs answers in catalog order, not request order.
func (s *Server) postDogs(response http.ResponseWriter, request *http.Request) {
	ids, ok := s.decodeIDs(response, request)
	if !ok {
		return
	}

	wanted := toSet(ids)
	dogs := []models.Dog{}
	for _, dog := range s.catalog.dogs {
		if _, ok := wanted[dog.ID]; ok {
			dogs = append(dogs, dog)
		}
	}

	s.writeJSON(response, dogs)
}

// postMatch picks the first id the catalog knows.
func (s *Server) postMatch(response http.ResponseWriter, request *http.Request) {
	ids, ok := s.decodeIDs(response, request)
	if !ok {
		return
	}
	if len(ids) == 0 {
		writeText(response, http.StatusBadRequest, "at least one id is required")
		return
	}

	match := models.Match{}
	for _, id := range ids {
		if _, ok := s.catalog.Dog(id); ok {
			match.Match = id
			break
		}
	}

	s.writeJSON(response, match)
}

func (s *Server) postLocations(response http.ResponseWriter, request *http.Request) {
	zips, ok := s.decodeIDs(response, request)
	if !ok {
		return
	}

	locations := []models.Location{}
	for _, zip := range zips {
		if location, ok := s.catalog.Location(zip); ok {
			locations = append(locations, location)
		}
	}

	s.writeJSON(response, locations)
}

func (s *Server) postLocationsSearch(response http.ResponseWriter, request *http.Request) {
	var params models.LocationSearchParams
	if err := decodeBody(request, &params); err != nil {
		writeText(response, http.StatusBadRequest, err.Error())
		return
	}

	size, from := defaultPageSize, 0
	if params.Size != nil {
		size = *params.Size
	}
	if params.From != nil {
		from = *params.From
	}
	if size <= 0 || from < 0 || from+size > maxResultWindow {
		writeText(response, http.StatusBadRequest, fmt.Sprintf("from + size must be between 1 and %d", maxResultWindow))
		return
	}

	found := s.catalog.searchLocations(params)
	result := locationSearchResponse{Results: []models.Location{}, Total: len(found)}
	if from < len(found) {
		end := from + size
		if end > len(found) {
			end = len(found)
		}
		result.Results = found[from:end]
	}

	s.writeJSON(response, result)
}
