package features

// Raw input columns read by the derivation formulas.
const (
	Age                      = "Age"
	MonthlyIncome            = "MonthlyIncome"
	TotalWorkingYears        = "TotalWorkingYears"
	YearsAtCompany           = "YearsAtCompany"
	JobSatisfaction          = "JobSatisfaction"
	EnvironmentSatisfaction  = "EnvironmentSatisfaction"
	RelationshipSatisfaction = "RelationshipSatisfaction"
	OverTime                 = "OverTime"
	YearsSinceLastPromotion  = "YearsSinceLastPromotion"
	YearsWithCurrManager     = "YearsWithCurrManager"
	JobRole                  = "JobRole"
	Department               = "Department"
)

// Derived feature columns.
const (
	TenureAgeRatio              = "YearsAtCompany_AgeRatio"
	IncomeTenureRatio           = "MonthlyIncome_WorkingYearsRatio"
	OvertimeSatisfactionProduct = "OverTime_JobSatisfaction"
	AvgSatisfaction             = "AvgSatisfaction"
	RecentlyPromoted            = "RecentlyPromoted"
	ManagerTenureRatio          = "TenureWithManagerRatio"
)

// Derived lists the derived columns in the order they are computed.
var Derived = []string{
	TenureAgeRatio,
	IncomeTenureRatio,
	OvertimeSatisfactionProduct,
	AvgSatisfaction,
	RecentlyPromoted,
	ManagerTenureRatio,
}

// Required lists the raw fields every derivation needs, in check order.
var Required = []string{
	Age,
	MonthlyIncome,
	TotalWorkingYears,
	YearsAtCompany,
	JobSatisfaction,
	EnvironmentSatisfaction,
	RelationshipSatisfaction,
	OverTime,
	YearsSinceLastPromotion,
	YearsWithCurrManager,
}

var satisfactionFields = []string{EnvironmentSatisfaction, JobSatisfaction, RelationshipSatisfaction}

// ignored columns carry no signal and are dropped before encoding.
var ignored = map[string]struct{}{
	"EmployeeCount":  {},
	"EmployeeNumber": {},
	"StandardHours":  {},
	"Over18":         {},
}

// Ignored reports whether column is dropped before scoring.
func Ignored(column string) bool {
	_, ok := ignored[column]
	return ok
}
