// Package travel defines the tool set the planning agent exposes to the
// model: a random destination picker, an itinerary formatter and, when
// Amadeus credentials are configured, live flight search tools.
package travel

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/arielhakim/voyago/pkg/configutil"
	"github.com/arielhakim/voyago/pkg/providers/amadeus"
	"github.com/arielhakim/voyago/pkg/tools"
)

var destinations = []string{
	"Barcelona, Spain",
	"Paris, France",
	"Berlin, Germany",
	"Tokyo, Japan",
	"Sydney, Australia",
	"New York, USA",
	"Cairo, Egypt",
	"Cape Town, South Africa",
	"Rio de Janeiro, Brazil",
	"Bali, Indonesia",
}

// Options configures the tool set. Rand and Clock default to the global
// source and wall clock; tests inject deterministic ones. Amadeus enables
// the flight search tools when non-nil.
type Options struct {
	Rand    *rand.Rand
	Clock   func() time.Time
	Amadeus *amadeus.Client
}

// NewRegistry builds the travel tool registry.
func NewRegistry(opts Options) (*tools.Registry, error) {
	pick := rand.Intn
	if opts.Rand != nil {
		pick = opts.Rand.Intn
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	reg := tools.NewRegistry()
	err := reg.Register(tools.Descriptor{
		Name:        "get_random_destination",
		Description: "Get a random vacation destination from a curated list.",
		Handler: func(map[string]any) (string, error) {
			return destinations[pick(len(destinations))], nil
		},
	})
	if err != nil {
		return nil, err
	}

	err = reg.Register(tools.Descriptor{
		Name:        "format_itinerary",
		Description: "Format a day-by-day itinerary skeleton for a destination.",
		Params: []tools.Param{
			{Name: "destination", Type: "string", Required: true, Description: "City and country, e.g. \"Paris, France\""},
			{Name: "days", Type: "integer", Description: "Trip length in days, defaults to 1"},
			{Name: "interests", Type: "string", Description: "Comma-separated traveler interests"},
		},
		Handler: formatItinerary,
	})
	if err != nil {
		return nil, err
	}

	if opts.Amadeus != nil {
		if err := registerFlightTools(reg, opts.Amadeus, clock); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

type itineraryArgs struct {
	Destination string `mapstructure:"destination"`
	Days        int    `mapstructure:"days"`
	Interests   string `mapstructure:"interests"`
}

func formatItinerary(raw map[string]any) (string, error) {
	var args itineraryArgs
	if err := configutil.DecodeSettings(raw, &args); err != nil {
		return "", err
	}
	if args.Days <= 0 {
		args.Days = 1
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Itinerary: %s (%d day%s)\n", args.Destination, args.Days, plural(args.Days))
	if args.Interests != "" {
		fmt.Fprintf(&b, "Focus: %s\n", args.Interests)
	}
	for day := 1; day <= args.Days; day++ {
		fmt.Fprintf(&b, "Day %d:\n", day)
		b.WriteString("  Morning: \n  Afternoon: \n  Evening: \n")
	}
	return b.String(), nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
