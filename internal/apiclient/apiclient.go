// Package apiclient is the single chokepoint for calls to the dog adoption
// service. Every request carries a JSON content type and the session cookie;
// every non-2xx answer becomes a *RequestError.
package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/dogmatch/internal/logger"
	"github.com/patric-chuzhbe/dogmatch/internal/models"
)

// RequestIDHeader is set on every outgoing request.
const RequestIDHeader = "X-Request-Id"

var errUnexpectedShape = errors.New("unexpected JSON shape")

type bodyShape int

const (
	shapeNone bodyShape = iota
	shapeArray
	shapeObject
)

// Client talks to the remote service.
type Client struct {
	http    *resty.Client
	jar     http.CookieJar
	baseURL *url.URL
	log     *zap.SugaredLogger
}

type initOptions struct {
	timeout time.Duration
	jar     http.CookieJar
}

// InitOption configures a Client.
type InitOption func(*initOptions)

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(timeout time.Duration) InitOption {
	return func(options *initOptions) {
		options.timeout = timeout
	}
}

// WithCookieJar replaces the default in-memory cookie jar.
func WithCookieJar(jar http.CookieJar) InitOption {
	return func(options *initOptions) {
		options.jar = jar
	}
}

// New builds a client for the service at baseURL.
func New(baseURL string, opts ...InitOption) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("apiclient: parsing base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("apiclient: base URL %q must be absolute", baseURL)
	}

	options := &initOptions{}
	for _, opt := range opts {
		opt(options)
	}
	if options.jar == nil {
		options.jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
	}

	client := &Client{
		jar:     options.jar,
		baseURL: parsed,
		log:     logger.Named("apiclient"),
	}

	client.http = resty.New().
		SetBaseURL(parsed.String()).
		SetHeader("Content-Type", "application/json").
		SetCookieJar(options.jar).
		OnAfterResponse(client.logExchange)
	if options.timeout > 0 {
		client.http.SetTimeout(options.timeout)
	}

	return client, nil
}

func (c *Client) logExchange(_ *resty.Client, resp *resty.Response) error {
	c.log.Debugw(
		"api exchange",
		"method", resp.Request.Method,
		"url", resp.Request.URL,
		"status", resp.StatusCode(),
		"duration", resp.Time(),
		"requestID", resp.Request.Header.Get(RequestIDHeader),
	)

	return nil
}

// Cookies returns the cookies the jar holds for the service.
func (c *Client) Cookies() []*http.Cookie {
	return c.jar.Cookies(c.baseURL)
}

// SetCookies loads previously exported cookies into the jar.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	for _, cookie := range cookies {
		if cookie.Path == "" {
			cookie.Path = "/"
		}
	}
	c.jar.SetCookies(c.baseURL, cookies)
}

func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body any,
	shape bodyShape,
	result any,
) error {
	request := c.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, uuid.NewString())
	if body != nil {
		request.SetBody(body)
	}
	if len(query) > 0 {
		request.SetQueryParamsFromValues(query)
	}

	resp, err := request.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return &RequestError{Status: status, Body: string(resp.Body())}
	}

	if status == http.StatusNoContent || result == nil {
		return nil
	}

	return decode(method+" "+path, resp.Body(), shape, result)
}

func decode(op string, raw []byte, shape bodyShape, result any) error {
	if !gjson.ValidBytes(raw) {
		return &DecodeError{Op: op, Body: string(raw), Err: errUnexpectedShape}
	}

	parsed := gjson.ParseBytes(raw)
	if (shape == shapeArray && !parsed.IsArray()) || (shape == shapeObject && !parsed.IsObject()) {
		return &DecodeError{Op: op, Body: string(raw), Err: errUnexpectedShape}
	}

	if err := json.Unmarshal(raw, result); err != nil {
		return &DecodeError{Op: op, Body: string(raw), Err: err}
	}

	return nil
}

// Login starts a session. The service answers with a session cookie the jar
// keeps for later calls.
func (c *Client) Login(ctx context.Context, name, email string) error {
	return c.do(ctx, http.MethodPost, "/auth/login", nil, models.LoginRequest{Name: name, Email: email}, shapeNone, nil)
}

// Logout ends the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, shapeNone, nil)
}

// GetBreeds lists every breed name.
func (c *Client) GetBreeds(ctx context.Context) ([]string, error) {
	var breeds []string
	if err := c.do(ctx, http.MethodGet, "/dogs/breeds", nil, nil, shapeArray, &breeds); err != nil {
		return nil, err
	}

	return breeds, nil
}

// Search returns one page of dog ids. Slice fields become repeated query
// parameters; nil and empty fields are left out.
func (c *Client) Search(ctx context.Context, params models.SearchParams) (*models.SearchResults, error) {
	results := &models.SearchResults{}
	if err := c.do(ctx, http.MethodGet, "/dogs/search", SearchQuery(params), nil, shapeObject, results); err != nil {
		return nil, err
	}

	return results, nil
}

// SearchQuery encodes params the way GET /dogs/search expects them.
func SearchQuery(params models.SearchParams) url.Values {
	query := url.Values{}
	for _, breed := range params.Breeds {
		query.Add("breeds", breed)
	}
	for _, zip := range params.ZipCodes {
		query.Add("zipCodes", zip)
	}

	setInt := func(key string, value *int) {
		if value != nil {
			query.Set(key, strconv.Itoa(*value))
		}
	}
	setInt("ageMin", params.AgeMin)
	setInt("ageMax", params.AgeMax)
	setInt("size", params.Size)
	setInt("from", params.From)

	if params.Sort != "" {
		query.Set("sort", params.Sort)
	}

	return query
}

// GetDogs fetches full records. The result order is not tied to ids.
func (c *Client) GetDogs(ctx context.Context, ids []string) ([]models.Dog, error) {
	var dogs []models.Dog
	if err := c.do(ctx, http.MethodPost, "/dogs", nil, nonNil(ids), shapeArray, &dogs); err != nil {
		return nil, err
	}

	return dogs, nil
}

// Match asks the service to pick one id among ids.
func (c *Client) Match(ctx context.Context, ids []string) (*models.Match, error) {
	match := &models.Match{}
	if err := c.do(ctx, http.MethodPost, "/dogs/match", nil, nonNil(ids), shapeObject, match); err != nil {
		return nil, err
	}

	return match, nil
}

// GetLocations resolves zip codes.
func (c *Client) GetLocations(ctx context.Context, zipCodes []string) ([]models.Location, error) {
	var locations []models.Location
	if err := c.do(ctx, http.MethodPost, "/locations", nil, nonNil(zipCodes), shapeArray, &locations); err != nil {
		return nil, err
	}

	return locations, nil
}

// SearchLocations finds locations by city, state or bounding box.
func (c *Client) SearchLocations(
	ctx context.Context,
	params models.LocationSearchParams,
) (*models.LocationSearchResults, error) {
	results := &models.LocationSearchResults{}
	if err := c.do(ctx, http.MethodPost, "/locations/search", nil, params, shapeObject, results); err != nil {
		return nil, err
	}

	return results, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
