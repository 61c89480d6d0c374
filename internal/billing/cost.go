package billing

var multipliers = map[OS]int64{
	OSLinux:   1,
	OSWindows: 2,
	OSMacOS:   10,
	OSUnknown: 1,
}

// Per-minute USD rates mirroring GitHub-hosted runner pricing. The unknown
// category bills at the linux rate.
var costPerMinute = map[OS]float64{
	OSLinux:   0.008,
	OSWindows: 0.016,
	OSMacOS:   0.08,
	OSUnknown: 0.008,
}

// Multiplier returns the per-OS billing weight applied to raw minutes.
func Multiplier(os OS) int64 {
	if m, ok := multipliers[os]; ok {
		return m
	}
	return multipliers[OSUnknown]
}

// RatePerMinute returns the per-OS USD rate applied to raw minutes.
func RatePerMinute(os OS) float64 {
	if r, ok := costPerMinute[os]; ok {
		return r
	}
	return costPerMinute[OSUnknown]
}

// EstimateCost sums raw (unweighted) minutes times the per-OS rate. The
// multiplier table and the rate table must move together: this formula is
// only equivalent to billableMinutes x flat rate while they do.
func EstimateCost(a *Aggregated) float64 {
	var total float64
	for _, os := range Categories {
		total += float64(a.ByOS[os].Minutes) * RatePerMinute(os)
	}
	return total
}

// Projection extrapolates the estimated cost over standard periods.
type Projection struct {
	Days    int     `json:"days"`
	Daily   float64 `json:"daily"`
	Weekly  float64 `json:"weekly"`
	Monthly float64 `json:"monthly"`
}

// Project derives daily/weekly/monthly cost from the estimate and the
// number of days the data spans. days below one is treated as one.
func Project(cost float64, days int) Projection {
	if days < 1 {
		days = 1
	}
	daily := cost / float64(days)
	return Projection{
		Days:    days,
		Daily:   daily,
		Weekly:  daily * 7,
		Monthly: daily * 30,
	}
}
