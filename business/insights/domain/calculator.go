package domain

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/fd1az/naijatrade/internal/validate"
)

// DefaultDuration is the horizon used when none is chosen.
const DefaultDuration = "1yr"

// DurationMonths maps each supported horizon to its length.
var DurationMonths = map[string]int{"3mo": 3, "6mo": 6, "1yr": 12, "2yr": 24, "5yr": 60}

// Durations lists the horizons shortest first.
var Durations = []string{"3mo", "6mo", "1yr", "2yr", "5yr"}

// Instrument is one savings or investment product with its annual rate per
// horizon.
type Instrument struct {
	Name     string                     `json:"name"`
	Category string                     `json:"category"`
	Rates    map[string]decimal.Decimal `json:"rates"`
	Risk     string                     `json:"risk"`
}

// Rate returns the annual percentage for duration, falling back to the one
// year rate and then zero.
func (i Instrument) Rate(duration string) decimal.Decimal {
	if r, ok := i.Rates[duration]; ok {
		return r
	}
	return i.Rates[DefaultDuration]
}

// Rates is the instrument catalogue keyed by instrument id.
type Rates struct {
	Rates     map[string]Instrument `json:"rates"`
	Durations []string              `json:"durations"`
}

// CurvePoint is the balance after Month months.
type CurvePoint struct {
	Month int             `json:"month"`
	Value decimal.Decimal `json:"value"`
}

// Projection is one instrument's compounded outcome.
type Projection struct {
	Key           string          `json:"key"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Risk          string          `json:"risk"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	FinalValue    decimal.Decimal `json:"final_value"`
	TotalReturn   decimal.Decimal `json:"total_return"`
	ReturnPercent decimal.Decimal `json:"return_percent"`
	GrowthCurve   []CurvePoint    `json:"growth_curve"`
}

// SavingsComparison ranks every instrument for one amount and horizon, best
// first.
type SavingsComparison struct {
	AmountNGN decimal.Decimal `json:"amount_ngn"`
	Duration  string          `json:"duration"`
	Months    int             `json:"months"`
	Results   []Projection    `json:"results"`
	Winner    *Projection     `json:"winner"`
}

// CompareForm is the calculator input.
type CompareForm struct {
	AmountNGN decimal.Decimal `json:"amount_ngn"`
	Duration  string          `json:"duration"`
}

// NewCompareForm uses the one year horizon.
func NewCompareForm(amount decimal.Decimal) *CompareForm {
	return &CompareForm{AmountNGN: amount, Duration: DefaultDuration}
}

func (f *CompareForm) SetDuration(d string) *CompareForm {
	f.Duration = d
	return f
}

func (f *CompareForm) Validate() error {
	return validate.New("savings").
		Positive("amount_ngn", f.AmountNGN).
		OneOf("duration", f.Duration, Durations...).
		Err()
}

// Months returns the horizon length; unknown horizons count as a year.
func (f *CompareForm) Months() int {
	if m, ok := DurationMonths[f.Duration]; ok {
		return m
	}
	return DurationMonths[DefaultDuration]
}

// Project compounds the amount monthly for every instrument in rates and
// ranks them by total return. Money values round to kobo.
func Project(rates Rates, f *CompareForm) SavingsComparison {
	duration := f.Duration
	if duration == "" {
		duration = DefaultDuration
	}
	months := f.Months()
	hundred := decimal.NewFromInt(100)
	twelve := decimal.NewFromInt(12)

	results := make([]Projection, 0, len(rates.Rates))
	for key, inst := range rates.Rates {
		annual := inst.Rate(duration)
		growth := decimal.NewFromInt(1).Add(annual.Div(hundred).Div(twelve))

		value := f.AmountNGN
		curve := make([]CurvePoint, 0, months+1)
		curve = append(curve, CurvePoint{Month: 0, Value: value.Round(2)})
		for m := 1; m <= months; m++ {
			value = value.Mul(growth)
			curve = append(curve, CurvePoint{Month: m, Value: value.Round(2)})
		}

		ret := value.Sub(f.AmountNGN)
		results = append(results, Projection{
			Key:           key,
			Name:          inst.Name,
			Category:      inst.Category,
			Risk:          inst.Risk,
			AnnualRate:    annual,
			FinalValue:    value.Round(2),
			TotalReturn:   ret.Round(2),
			ReturnPercent: ret.Div(f.AmountNGN).Mul(hundred).Round(2),
			GrowthCurve:   curve,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if c := results[i].TotalReturn.Cmp(results[j].TotalReturn); c != 0 {
			return c > 0
		}
		return results[i].Key < results[j].Key
	})

	out := SavingsComparison{AmountNGN: f.AmountNGN, Duration: duration, Months: months, Results: results}
	if len(results) > 0 {
		out.Winner = &results[0]
	}
	return out
}
