package billing

import "time"

// GroupByWeek re-buckets the per-day rollup into Monday-start weeks keyed
// by the week's start date. Pure view over ByDate, computed on demand.
func GroupByWeek(a *Aggregated) map[string]*Bucket {
	return regroup(a, weekStart)
}

// GroupByMonth re-buckets the per-day rollup by "YYYY-MM".
func GroupByMonth(a *Aggregated) map[string]*Bucket {
	return regroup(a, func(day string) string {
		if len(day) < 7 {
			return day
		}
		return day[:7]
	})
}

func regroup(a *Aggregated, keyFor func(day string) string) map[string]*Bucket {
	out := make(map[string]*Bucket)
	for day, b := range a.ByDate {
		key := keyFor(day)
		dst := out[key]
		if dst == nil {
			dst = &Bucket{}
			out[key] = dst
		}
		dst.Minutes += b.Minutes
		dst.BillableMinutes += b.BillableMinutes
		dst.JobCount += b.JobCount
	}
	return out
}

// weekStart maps a day key to the Monday that starts its week. Keys that
// fail to parse bucket under themselves.
func weekStart(day string) string {
	t, err := time.Parse(dayLayout, day)
	if err != nil {
		return day
	}
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(dayLayout)
}
