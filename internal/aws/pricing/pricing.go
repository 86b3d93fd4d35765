package pricing

import "math"

// Rates holds the fixed monthly cost heuristics applied by the scanners.
// Values are USD and come from configuration, never from a live pricing API.
type Rates struct {
	EBSGBMonth             float64 `mapstructure:"ebs_gb_month"`
	EIPMonthly             float64 `mapstructure:"eip_monthly"`
	SnapshotGBMonth        float64 `mapstructure:"snapshot_gb_month"`
	RDSStorageGBMonth      float64 `mapstructure:"rds_storage_gb_month"`
	RDSIdleMonthly         float64 `mapstructure:"rds_idle_monthly"`
	NATMonthly             float64 `mapstructure:"nat_monthly"`
	S3StaleMonthly         float64 `mapstructure:"s3_stale_monthly"`
	EC2StoppedMonthly      float64 `mapstructure:"ec2_stopped_monthly"`
	EC2IdleMonthly         float64 `mapstructure:"ec2_idle_monthly"`
	EKSControlPlaneMonthly float64 `mapstructure:"eks_control_plane_monthly"`
	LBMonthly              float64 `mapstructure:"lb_monthly"`
}

// Thresholds controls when a resource counts as idle or stale.
type Thresholds struct {
	EC2CPUPercent     float64 `mapstructure:"ec2_cpu_percent"`
	EC2LookbackDays   int     `mapstructure:"ec2_lookback_days"`
	NATLookbackDays   int     `mapstructure:"nat_lookback_days"`
	RDSLookbackDays   int     `mapstructure:"rds_lookback_days"`
	LBLookbackDays    int     `mapstructure:"lb_lookback_days"`
	S3StaleDays       int     `mapstructure:"s3_stale_days"`
	MetricPeriodHours int     `mapstructure:"metric_period_hours"`
}

// DefaultRates are the cost constants used when nothing is configured.
var DefaultRates = Rates{
	EBSGBMonth:             0.08,
	EIPMonthly:             3.60,
	SnapshotGBMonth:        0.05,
	RDSStorageGBMonth:      0.115,
	RDSIdleMonthly:         25.00,
	NATMonthly:             32.40,
	S3StaleMonthly:         2.50,
	EC2StoppedMonthly:      2.00,
	EC2IdleMonthly:         20.00,
	EKSControlPlaneMonthly: 72.00,
	LBMonthly:              16.20,
}

// DefaultThresholds are the idle/stale thresholds used when nothing is configured.
var DefaultThresholds = Thresholds{
	EC2CPUPercent:     1.0,
	EC2LookbackDays:   7,
	NATLookbackDays:   1,
	RDSLookbackDays:   7,
	LBLookbackDays:    7,
	S3StaleDays:       180,
	MetricPeriodHours: 24,
}

// CostBreakdown expresses a monthly cost at other granularities
type CostBreakdown struct {
	HourlyRate  float64 `json:"hourly_rate"`
	DailyRate   float64 `json:"daily_rate"`
	MonthlyRate float64 `json:"monthly_rate"`
	YearlyRate  float64 `json:"yearly_rate"`
}

// RoundCost rounds a cost value to 4 decimal places
func RoundCost(cost float64) float64 {
	return math.Round(cost*10000) / 10000
}

// CalculateRates derives hourly, daily and yearly rates from a monthly cost
// using a 30-day month.
func CalculateRates(monthly float64) CostBreakdown {
	daily := monthly / 30
	return CostBreakdown{
		HourlyRate:  RoundCost(daily / 24),
		DailyRate:   RoundCost(daily),
		MonthlyRate: RoundCost(monthly),
		YearlyRate:  RoundCost(daily * 365),
	}
}

// PerGB returns sizeGB × rate, rounded. Negative sizes count as zero.
func PerGB(sizeGB int64, rate float64) float64 {
	if sizeGB <= 0 {
		return 0
	}
	return RoundCost(float64(sizeGB) * rate)
}
