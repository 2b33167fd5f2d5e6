package seed

import (
	"errors"
	"fmt"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
)

// verifyListing checks that every created performance is listed with the
// expected display values and that the listing is in key order.
func verifyListing(views []model.PerformanceView, expected map[string]expectation) error {
	var errs []error
	seen := make(map[string]bool, len(expected))

	for i, v := range views {
		if i > 0 && views[i-1].PerformanceID >= v.PerformanceID {
			errs = append(errs, fmt.Errorf("listing out of order at %d: %s after %s",
				i, v.PerformanceID, views[i-1].PerformanceID))
		}
		exp, ok := expected[v.PerformanceID]
		if !ok {
			continue
		}
		seen[v.PerformanceID] = true
		errs = append(errs, compareView(v, exp)...)
	}

	for id := range expected {
		if !seen[id] {
			errs = append(errs, fmt.Errorf("performance %s missing from listing", id))
		}
	}
	return errors.Join(errs...)
}

func compareView(v model.PerformanceView, exp expectation) []error {
	var errs []error
	check := func(field, got, want string) {
		if got != want {
			errs = append(errs, fmt.Errorf("%s (%s): %s = %q, want %q", v.PerformanceID, exp.name, field, got, want))
		}
	}
	check("name", v.Name, exp.name)
	check("bandName", v.BandName, exp.bandName)
	check("setListName", v.SetListName, exp.setListName)
	check("venueName", v.VenueName, exp.venue.Name)
	check("city", v.City, exp.venue.City)
	check("state", v.State, exp.venue.State)
	check("streetAddress", v.StreetAddress, exp.venue.StreetAddress)
	check("zip", v.Zip, exp.venue.Zip)
	return errs
}
