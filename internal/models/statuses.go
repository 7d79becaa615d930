package models

type PlanType string
type PlanDuration string
type UserRole string

const (
	PlanTypeBasic    PlanType = "Basic"
	PlanTypeStandard PlanType = "Standard"
	PlanTypePremium  PlanType = "Premium"

	PlanDurationMonth       PlanDuration = "1 Month"
	PlanDurationThreeMonths PlanDuration = "3 Months"
	PlanDurationSixMonths   PlanDuration = "6 Months"
	PlanDurationYear        PlanDuration = "1 Year"

	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

var (
	PlanTypes     = []PlanType{PlanTypeBasic, PlanTypeStandard, PlanTypePremium}
	PlanDurations = []PlanDuration{PlanDurationMonth, PlanDurationThreeMonths, PlanDurationSixMonths, PlanDurationYear}
)

func (t PlanType) IsValid() bool {
	for _, v := range PlanTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (d PlanDuration) IsValid() bool {
	for _, v := range PlanDurations {
		if v == d {
			return true
		}
	}
	return false
}

func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleUser
}
