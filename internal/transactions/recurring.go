package transactions

import (
	"context"
	"log/slog"
	"time"
)

// MaterializeRecurring walks every recurring template transaction and
// inserts the occurrences that became due since the template's date.
// The template's date is advanced to the last materialized occurrence so
// repeated runs are idempotent. Returns the number of inserted rows.
func (s *Service) MaterializeRecurring(ctx context.Context) (int, error) {
	templates, err := s.store.FindRecurring(ctx)
	if err != nil {
		return 0, err
	}

	now := s.clock()
	created := 0
	for _, template := range templates {
		last := template.Date
		next := nextOccurrence(template.Date, template.RecurringPeriod)
		for !next.After(now) {
			occurrence := template
			occurrence.ID = ""
			occurrence.Date = next
			occurrence.IsRecurring = false
			occurrence.RecurringPeriod = ""
			if _, err := s.store.Insert(ctx, &occurrence); err != nil {
				return created, err
			}
			created++
			last = next
			next = nextOccurrence(next, template.RecurringPeriod)
		}
		if !last.Equal(template.Date) {
			template.Date = last
			if err := s.store.UpdateByID(ctx, template.ID, &template); err != nil {
				return created, err
			}
			s.invalidate(ctx, template.UserID)
		}
	}
	if created > 0 {
		s.logger.Info("materialized recurring transactions", slog.Int("created", created))
	}
	return created, nil
}

func nextOccurrence(date time.Time, period RecurringPeriod) time.Time {
	switch period {
	case RecurringDaily:
		return date.AddDate(0, 0, 1)
	case RecurringWeekly:
		return date.AddDate(0, 0, 7)
	case RecurringMonthly:
		return date.AddDate(0, 1, 0)
	case RecurringYearly:
		return date.AddDate(1, 0, 0)
	default:
		// Unknown period: never due.
		return date.AddDate(100, 0, 0)
	}
}
