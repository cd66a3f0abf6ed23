package travel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arielhakim/voyago/pkg/configutil"
	"github.com/arielhakim/voyago/pkg/providers/amadeus"
	"github.com/arielhakim/voyago/pkg/tools"
)

const maxFormattedResults = 5

func registerFlightTools(reg *tools.Registry, client *amadeus.Client, clock func() time.Time) error {
	err := reg.Register(tools.Descriptor{
		Name:        "get_cheapest_travel_days",
		Description: "Find the cheapest travel dates between two cities.",
		Params: []tools.Param{
			{Name: "origin", Type: "string", Required: true, Description: "IATA code of the departure city, e.g. \"LAX\""},
			{Name: "destination", Type: "string", Required: true, Description: "IATA code of the arrival city, e.g. \"CDG\""},
			{Name: "departure_date", Type: "string", Description: "Departure date in YYYY-MM-DD format"},
			{Name: "duration", Type: "string", Description: "Trip duration range, e.g. \"1-7\""},
		},
		Handler: cheapestTravelDays(client, clock),
	})
	if err != nil {
		return err
	}

	err = reg.Register(tools.Descriptor{
		Name:        "get_flight_offers",
		Description: "Search for flight offers with prices, airlines and times.",
		Params: []tools.Param{
			{Name: "origin", Type: "string", Required: true, Description: "IATA code of the departure airport"},
			{Name: "destination", Type: "string", Required: true, Description: "IATA code of the arrival airport"},
			{Name: "departure_date", Type: "string", Required: true, Description: "Departure date in YYYY-MM-DD format"},
			{Name: "adults", Type: "integer", Description: "Number of adult passengers, defaults to 1"},
			{Name: "return_date", Type: "string", Description: "Return date for round trips"},
			{Name: "travel_class", Type: "string", Enum: []string{"ECONOMY", "PREMIUM_ECONOMY", "BUSINESS", "FIRST"}},
			{Name: "nonstop", Type: "boolean", Description: "Only return non-stop flights"},
			{Name: "currency", Type: "string", Description: "Preferred currency code, defaults to USD"},
		},
		Handler: flightOffers(client),
	})
	if err != nil {
		return err
	}

	return reg.Register(tools.Descriptor{
		Name:        "get_airport_code",
		Description: "Look up IATA airport codes for a city name.",
		Params: []tools.Param{
			{Name: "city_name", Type: "string", Required: true, Description: "City or airport name to search for"},
		},
		Handler: airportCode(client),
	})
}

type cheapestArgs struct {
	Origin        string `mapstructure:"origin"`
	Destination   string `mapstructure:"destination"`
	DepartureDate string `mapstructure:"departure_date"`
	Duration      string `mapstructure:"duration"`
}

func cheapestTravelDays(client *amadeus.Client, clock func() time.Time) tools.Handler {
	return func(raw map[string]any) (string, error) {
		var args cheapestArgs
		if err := configutil.DecodeSettings(raw, &args); err != nil {
			return "", err
		}
		if args.DepartureDate == "" {
			args.DepartureDate = clock().AddDate(0, 0, 30).Format("2006-01-02")
		}
		dates, err := client.FlightDates(context.Background(), args.Origin, args.Destination, args.DepartureDate, args.Duration)
		if err != nil {
			return "", err
		}
		if len(dates) == 0 {
			return fmt.Sprintf("No flight data found for route %s to %s.", args.Origin, args.Destination), nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Cheapest travel dates from %s to %s:\n", args.Origin, args.Destination)
		for i, d := range dates {
			if i == maxFormattedResults {
				break
			}
			if d.ReturnDate != "" {
				fmt.Fprintf(&b, "%d. %s to %s: %s\n", i+1, d.DepartureDate, d.ReturnDate, d.Price.Total)
			} else {
				fmt.Fprintf(&b, "%d. %s (one-way): %s\n", i+1, d.DepartureDate, d.Price.Total)
			}
		}
		return strings.TrimRight(b.String(), "\n"), nil
	}
}

type offersArgs struct {
	Origin        string `mapstructure:"origin"`
	Destination   string `mapstructure:"destination"`
	DepartureDate string `mapstructure:"departure_date"`
	Adults        int    `mapstructure:"adults"`
	ReturnDate    string `mapstructure:"return_date"`
	TravelClass   string `mapstructure:"travel_class"`
	Nonstop       bool   `mapstructure:"nonstop"`
	Currency      string `mapstructure:"currency"`
}

func flightOffers(client *amadeus.Client) tools.Handler {
	return func(raw map[string]any) (string, error) {
		var args offersArgs
		if err := configutil.DecodeSettings(raw, &args); err != nil {
			return "", err
		}
		offers, err := client.FlightOffers(context.Background(), amadeus.FlightOffersQuery{
			Origin:        args.Origin,
			Destination:   args.Destination,
			DepartureDate: args.DepartureDate,
			ReturnDate:    args.ReturnDate,
			Adults:        args.Adults,
			TravelClass:   args.TravelClass,
			Nonstop:       args.Nonstop,
			Currency:      args.Currency,
			MaxResults:    maxFormattedResults,
		})
		if err != nil {
			return "", err
		}
		if len(offers) == 0 {
			return fmt.Sprintf("No flight offers found for route %s to %s on %s.",
				args.Origin, args.Destination, args.DepartureDate), nil
		}
		tripType := "one-way"
		if args.ReturnDate != "" {
			tripType = "round-trip"
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Flight offers (%s) from %s to %s:\n", tripType, args.Origin, args.Destination)
		for i, offer := range offers {
			fmt.Fprintf(&b, "\nOption %d: %s %s\n", i+1, offer.Price.Currency, offer.Price.Total)
			for j, itin := range offer.Itineraries {
				leg := "Outbound"
				if j > 0 {
					leg = "Return"
				}
				if len(itin.Segments) == 0 {
					continue
				}
				first := itin.Segments[0]
				last := itin.Segments[len(itin.Segments)-1]
				stops := len(itin.Segments) - 1
				stopsText := "non-stop"
				if stops > 0 {
					stopsText = fmt.Sprintf("%d stop(s)", stops)
				}
				fmt.Fprintf(&b, "  %s: %s -> %s on %s at %s (Airline: %s, %s)\n",
					leg, first.Departure.IATACode, last.Arrival.IATACode,
					datePart(first.Departure.At), timePart(first.Departure.At),
					first.CarrierCode, stopsText)
				fmt.Fprintf(&b, "  Duration: %s\n", itin.Duration)
			}
		}
		return strings.TrimRight(b.String(), "\n"), nil
	}
}

type airportArgs struct {
	CityName string `mapstructure:"city_name"`
}

func airportCode(client *amadeus.Client) tools.Handler {
	return func(raw map[string]any) (string, error) {
		var args airportArgs
		if err := configutil.DecodeSettings(raw, &args); err != nil {
			return "", err
		}
		locs, err := client.Locations(context.Background(), args.CityName)
		if err != nil {
			return "", err
		}
		if len(locs) == 0 {
			return fmt.Sprintf("No airports found for %q.", args.CityName), nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Airports for %q:\n", args.CityName)
		for i, loc := range locs {
			if i == maxFormattedResults {
				break
			}
			line := fmt.Sprintf("%d. %s - %s", i+1, loc.IATACode, loc.Name)
			if loc.Address.CityName != "" && loc.Address.CountryName != "" {
				line += fmt.Sprintf(" (%s, %s)", loc.Address.CityName, loc.Address.CountryName)
			}
			b.WriteString(line + "\n")
		}
		return strings.TrimRight(b.String(), "\n"), nil
	}
}

// ISO timestamps from the API look like 2026-06-15T08:00:00.
func datePart(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}

func timePart(ts string) string {
	if len(ts) >= 16 {
		return ts[11:16]
	}
	return ""
}
