package willyweather

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"
)

// Target describes where to look for a station. Exactly one of the three
// forms is used, checked in order: explicit station id, coordinates,
// street address.
type Target struct {
	StationID int
	Latitude  *float64
	Longitude *float64
	Address   string
}

// String renders the target for log lines and error messages.
func (t Target) String() string {
	switch {
	case t.StationID != 0:
		return fmt.Sprintf("station %d", t.StationID)
	case t.Latitude != nil && t.Longitude != nil:
		return fmt.Sprintf("%.4f,%.4f", *t.Latitude, *t.Longitude)
	case t.Address != "":
		return t.Address
	default:
		return "unspecified target"
	}
}

// Resolved is the outcome of station resolution.
type Resolved struct {
	StationID   int
	StationName string
}

// Resolver turns setup targets into concrete stations using the API client
// and, for street addresses, the Google geocoding API. geocoder.ApiKey must
// be set before address resolution is used.
type Resolver struct {
	Client *Client
}

// Resolve validates an explicit station id, or geocodes and searches for
// the nearest station. The search endpoint is called at most once.
func (r *Resolver) Resolve(ctx context.Context, target Target) (Resolved, error) {
	if target.StationID != 0 {
		name, err := r.Client.StationName(ctx, target.StationID)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{StationID: target.StationID, StationName: name}, nil
	}

	lat, lng := target.Latitude, target.Longitude
	if lat == nil || lng == nil {
		if target.Address == "" {
			return Resolved{}, fmt.Errorf("station resolution needs an id, coordinates, or an address")
		}
		loc, err := geocoder.Geocoding(geocoder.Address{Street: target.Address})
		if err != nil {
			return Resolved{}, fmt.Errorf("failed to geocode %q: %w", target.Address, err)
		}
		lat, lng = &loc.Latitude, &loc.Longitude
	}

	st, err := r.Client.SearchClosest(ctx, *lat, *lng)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{StationID: st.ID, StationName: st.Name}, nil
}
