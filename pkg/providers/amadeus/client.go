package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/arielhakim/voyago/pkg/errorsx"
)

// Client is a minimal Amadeus Self-Service API client covering the
// endpoints the travel tools need: cheapest flight dates, flight offers
// and airport lookup. Tokens are fetched with the client-credentials
// grant and cached until shortly before expiry.
type Client struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Client    *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewClient(apiKey, apiSecret string) *Client {
	return &Client{
		APIKey:    apiKey,
		APISecret: apiSecret,
		BaseURL:   "https://test.api.amadeus.com",
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type FlightDate struct {
	DepartureDate string `json:"departureDate"`
	ReturnDate    string `json:"returnDate"`
	Price         struct {
		Total string `json:"total"`
	} `json:"price"`
}

type Segment struct {
	Departure struct {
		IATACode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"departure"`
	Arrival struct {
		IATACode string `json:"iataCode"`
		At       string `json:"at"`
	} `json:"arrival"`
	CarrierCode string `json:"carrierCode"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type FlightOffer struct {
	Price struct {
		Total    string `json:"total"`
		Currency string `json:"currency"`
	} `json:"price"`
	Itineraries []Itinerary `json:"itineraries"`
}

type Location struct {
	IATACode string `json:"iataCode"`
	Name     string `json:"name"`
	Address  struct {
		CityName    string `json:"cityName"`
		CountryName string `json:"countryName"`
	} `json:"address"`
}

// FlightOffersQuery mirrors the Flight Offers Search parameters the
// get_flight_offers tool exposes.
type FlightOffersQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	TravelClass   string
	Nonstop       bool
	Currency      string
	MaxResults    int
}

// FlightDates queries the Flight Cheapest Date Search API.
func (c *Client) FlightDates(ctx context.Context, origin, destination, departureDate, duration string) ([]FlightDate, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	if departureDate != "" {
		q.Set("departureDate", departureDate)
	}
	if duration != "" {
		q.Set("duration", duration)
	}
	var payload struct {
		Data []FlightDate `json:"data"`
	}
	if err := c.get(ctx, "/v1/shopping/flight-dates", q, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// FlightOffers queries the Flight Offers Search API.
func (c *Client) FlightOffers(ctx context.Context, query FlightOffersQuery) ([]FlightOffer, error) {
	adults := query.Adults
	if adults <= 0 {
		adults = 1
	}
	max := query.MaxResults
	if max <= 0 {
		max = 5
	}
	currency := query.Currency
	if currency == "" {
		currency = "USD"
	}
	q := url.Values{}
	q.Set("originLocationCode", query.Origin)
	q.Set("destinationLocationCode", query.Destination)
	q.Set("departureDate", query.DepartureDate)
	q.Set("adults", strconv.Itoa(adults))
	q.Set("currencyCode", currency)
	q.Set("max", strconv.Itoa(max))
	if query.ReturnDate != "" {
		q.Set("returnDate", query.ReturnDate)
	}
	if query.Nonstop {
		q.Set("nonStop", "true")
	}
	if query.TravelClass != "" && !strings.EqualFold(query.TravelClass, "ECONOMY") {
		q.Set("travelClass", strings.ToUpper(query.TravelClass))
	}
	var payload struct {
		Data []FlightOffer `json:"data"`
	}
	if err := c.get(ctx, "/v2/shopping/flight-offers", q, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// Locations searches airports by city or airport name.
func (c *Client) Locations(ctx context.Context, keyword string) ([]Location, error) {
	q := url.Values{}
	q.Set("keyword", keyword)
	q.Set("subType", "AIRPORT")
	var payload struct {
		Data []Location `json:"data"`
	}
	if err := c.get(ctx, "/v1/reference-data/locations", q, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.client().Do(req)
	if err != nil {
		return errorsx.Wrap(err, errorsx.ReasonAmadeusRequest)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorsx.Wrap(errors.New(apiErrorDetail(resp.Body)), errorsx.ReasonAmadeusRequest)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.APIKey)
	form.Set("client_secret", c.APISecret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.client().Do(req)
	if err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonAmadeusAuth)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errorsx.Wrap(errors.New(apiErrorDetail(resp.Body)), errorsx.ReasonAmadeusAuth)
	}
	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errorsx.Wrap(err, errorsx.ReasonAmadeusAuth)
	}
	c.accessToken = payload.AccessToken
	// Refresh a minute early so in-flight requests never race expiry.
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - time.Minute)
	return c.accessToken, nil
}

func (c *Client) client() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

func apiErrorDetail(body io.Reader) string {
	raw, _ := io.ReadAll(body)
	var payload struct {
		Errors []struct {
			Detail string `json:"detail"`
			Title  string `json:"title"`
		} `json:"errors"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if len(payload.Errors) > 0 {
			if payload.Errors[0].Detail != "" {
				return payload.Errors[0].Detail
			}
			return payload.Errors[0].Title
		}
		if payload.ErrorDescription != "" {
			return payload.ErrorDescription
		}
	}
	return strings.TrimSpace(string(raw))
}
