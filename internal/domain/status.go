// internal/domain/status.go
package domain

// MovementClass buckets inventory by movement velocity from DIO.
type MovementClass string

const (
	MovementDeadStock    MovementClass = "Dead Stock"
	MovementFast         MovementClass = "Fast Moving"
	MovementNormal       MovementClass = "Normal Moving"
	MovementSlow         MovementClass = "Slow Moving"
	MovementVerySlow     MovementClass = "Very Slow Moving"
	MovementObsoleteRisk MovementClass = "Obsolete Risk"
)

// StockOutRisk is the DIO-based stock-out alert tier from the classifier.
type StockOutRisk string

const (
	StockOutRiskOutOfStock StockOutRisk = "Out of Stock"
	StockOutRiskCritical   StockOutRisk = "Critical"
	StockOutRiskWarning    StockOutRisk = "Warning"
	StockOutRiskMonitor    StockOutRisk = "Monitor"
	StockOutRiskSafe       StockOutRisk = "Safe"
)

// ABCClass is the value-concentration tier of a SKU.
type ABCClass string

const (
	ABCClassA ABCClass = "A"
	ABCClassB ABCClass = "B"
	ABCClassC ABCClass = "C"
)

// RiskTier is the days-until-stockout tier from the stockout predictor.
type RiskTier string

const (
	RiskTierOutOfStock RiskTier = "Out of Stock"
	RiskTierCritical   RiskTier = "Critical"
	RiskTierHigh       RiskTier = "High"
	RiskTierModerate   RiskTier = "Moderate"
	RiskTierLow        RiskTier = "Low"
	RiskTierNoDemand   RiskTier = "No Demand"
)

// ConfidenceTier reflects how many historical observations back a statistic.
type ConfidenceTier string

const (
	ConfidenceHigh   ConfidenceTier = "High"
	ConfidenceMedium ConfidenceTier = "Medium"
	ConfidenceLow    ConfidenceTier = "Low"
)
