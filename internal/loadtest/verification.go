package loadtest

import (
	"errors"
	"fmt"
)

// Verify checks every completed visit on its own and against the others.
// Each visit must have seen pages 1..N in order, no page may hold more than
// the page size, the cards must add up to the project count, and all visits
// must agree on that count.
func Verify(visits []Visit) error {
	var errs []error
	reference := -1

	for _, v := range visits {
		if v.Err != nil || len(v.Visited) == 0 {
			continue
		}
		if err := verifyVisit(v); err != nil {
			errs = append(errs, err)
			continue
		}
		switch {
		case reference < 0:
			reference = v.Works
		case v.Works != reference:
			errs = append(errs, fmt.Errorf("%w: view %s saw %d projects, others saw %d",
				ErrInconsistent, v.ViewID, v.Works, reference))
		}
	}
	return errors.Join(errs...)
}

func verifyVisit(v Visit) error {
	want := max(v.Pages, 1)
	if len(v.Visited) != want || len(v.Counts) != want {
		return fmt.Errorf("%w: view %s visited %d pages, expected %d",
			ErrInconsistent, v.ViewID, len(v.Visited), want)
	}
	total := 0
	for i, page := range v.Visited {
		if page != i+1 {
			return fmt.Errorf("%w: view %s visited page %d in position %d",
				ErrInconsistent, v.ViewID, page, i+1)
		}
		if v.Counts[i] > v.PerPage {
			return fmt.Errorf("%w: view %s page %d holds %d cards, page size is %d",
				ErrInconsistent, v.ViewID, page, v.Counts[i], v.PerPage)
		}
		total += v.Counts[i]
	}
	if total != v.Works {
		return fmt.Errorf("%w: view %s pages hold %d cards for %d projects",
			ErrInconsistent, v.ViewID, total, v.Works)
	}
	return nil
}
