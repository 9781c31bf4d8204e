// internal/engine/config.go
package engine

import "time"

// MovementThresholds are DIO cut-offs for movement-velocity classes.
type MovementThresholds struct {
	FastMax     float64
	NormalMax   float64
	SlowMax     float64
	VerySlowMax float64
}

// StockOutThresholds are DIO cut-offs for the classifier's risk tiers.
type StockOutThresholds struct {
	CriticalMax float64
	WarningMax  float64
	SafeMin     float64
}

// ABCConfig selects the classification strategy and its cut-offs.
type ABCConfig struct {
	Method        string  // "value" or "count"
	ValueAPercent float64 // cumulative value share for class A
	ValueBPercent float64 // cumulative value share for class B
	CountAPercent float64 // top share of SKUs for class A
	CountBPercent float64 // next share of SKUs for class B
}

// ScrapConfig holds the age gates and keep-days per aggressiveness level.
type ScrapConfig struct {
	MinAgeDays int

	ConservativeMinAgeDays      int
	ConservativeMaxActiveMonths int
	ConservativeKeepDays        float64

	MediumMinAgeDays  int
	MediumKeepDays    float64
	MediumLowKeepDays float64

	AggressiveMinAgeDays  int
	AggressiveKeepDays    float64
	AggressiveOldAgeDays  int
	AggressiveOldKeepDays float64
	AggressiveLowKeepDays float64
}

// Config carries every business constant the engine's components use.
// Values are policy, not derived numbers; defaults mirror the operating
// thresholds the planning team signed off on.
type Config struct {
	Today time.Time

	// Demand calculator.
	LookbackDays          int
	MarketIntroBufferDays int
	MinActiveDays         int

	// Lead time estimator.
	LeadTimeLookbackDays   int
	LeadTimeBufferDays     float64
	HighConfidenceMinPOs   int
	MediumConfidenceMinPOs int
	DefaultLeadTimeDays    float64

	// Classifier.
	Movement MovementThresholds
	StockOut StockOutThresholds
	ABC      ABCConfig

	// Stockout predictor.
	ServiceLevel      int
	ReorderBufferDays float64

	// Scrap engine.
	Scrap ScrapConfig

	// Reporting currency.
	BaseCurrency  string
	CurrencyRates map[string]float64

	// Parallel fan-out bound; <=0 means GOMAXPROCS.
	Workers int
}

// serviceLevelZ maps service-level targets to their normal Z-scores.
var serviceLevelZ = map[int]float64{
	95: 1.65,
	98: 2.05,
	99: 2.33,
}

// DefaultConfig returns the engine defaults with Today pinned to now.
func DefaultConfig() Config {
	return Config{
		Today: time.Now(),

		LookbackDays:          365,
		MarketIntroBufferDays: 60,
		MinActiveDays:         30,

		LeadTimeLookbackDays:   730,
		LeadTimeBufferDays:     5,
		HighConfidenceMinPOs:   5,
		MediumConfidenceMinPOs: 2,
		DefaultLeadTimeDays:    90,

		Movement: MovementThresholds{
			FastMax:     30,
			NormalMax:   60,
			SlowMax:     90,
			VerySlowMax: 180,
		},
		StockOut: StockOutThresholds{
			CriticalMax: 7,
			WarningMax:  14,
			SafeMin:     30,
		},
		ABC: ABCConfig{
			Method:        "value",
			ValueAPercent: 80,
			ValueBPercent: 95,
			CountAPercent: 20,
			CountBPercent: 30,
		},

		ServiceLevel:      95,
		ReorderBufferDays: 14,

		Scrap: ScrapConfig{
			MinAgeDays:                  365,
			ConservativeMinAgeDays:      1095,
			ConservativeMaxActiveMonths: 2,
			ConservativeKeepDays:        365,
			MediumMinAgeDays:            730,
			MediumKeepDays:              180,
			MediumLowKeepDays:           90,
			AggressiveMinAgeDays:        365,
			AggressiveKeepDays:          90,
			AggressiveOldAgeDays:        1095,
			AggressiveOldKeepDays:       60,
			AggressiveLowKeepDays:       30,
		},

		BaseCurrency: "USD",
		CurrencyRates: map[string]float64{
			"USD_to_EUR": 0.9,
		},

		Workers: 0,
	}
}

// ZScore returns the Z-score for the configured service level, falling back
// to the 95% score for unknown targets.
func (c Config) ZScore() float64 {
	if z, ok := serviceLevelZ[c.ServiceLevel]; ok {
		return z
	}
	return serviceLevelZ[95]
}
