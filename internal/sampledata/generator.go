// Package sampledata generates synthetic employee tables for demos and load
// tests, and submits them to a running server for verification.
package sampledata

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/attriwatch/attriwatch/internal/domain/employee"
	"github.com/attriwatch/attriwatch/internal/domain/features"
	"github.com/attriwatch/attriwatch/pkg/logger"
)

// Columns is the generated header, in CSV order.
var Columns = []string{
	"EmployeeNumber",
	features.Age,
	features.Department,
	features.JobRole,
	features.MonthlyIncome,
	features.TotalWorkingYears,
	features.YearsAtCompany,
	"YearsInCurrentRole",
	features.YearsWithCurrManager,
	features.YearsSinceLastPromotion,
	"PercentSalaryHike",
	features.JobSatisfaction,
	features.EnvironmentSatisfaction,
	features.RelationshipSatisfaction,
	"WorkLifeBalance",
	features.OverTime,
}

// Profile shapes the generated values of one employee.
type Profile int

// Employee profiles, drawn uniformly.
const (
	ProfileAtRiskStar Profile = iota // high performer showing flight signals
	ProfileSteadyStar
	ProfileDisengaged
	ProfileNewcomer
	ProfileVeteran
	profileCount
)

func (p Profile) String() string {
	switch p {
	case ProfileAtRiskStar:
		return "at_risk_star"
	case ProfileSteadyStar:
		return "steady_star"
	case ProfileDisengaged:
		return "disengaged"
	case ProfileNewcomer:
		return "newcomer"
	case ProfileVeteran:
		return "veteran"
	default:
		return "unknown"
	}
}

var rolesByDepartment = map[string][]string{
	"Sales":                  {"Sales Executive", "Sales Representative", "Manager"},
	"Research & Development": {"Research Scientist", "Laboratory Technician", "Manufacturing Director", "Healthcare Representative", "Research Director", "Manager"},
	"Human Resources":        {"Human Resources", "Manager"},
}

var departments = []string{"Sales", "Research & Development", "Human Resources"}

// Config controls Generate.
type Config struct {
	// Rows is the number of employees to generate.
	Rows int
	// Seed makes the output reproducible.
	Seed uint64
	// MalformedEvery drops a required field from every n-th row when > 0.
	MalformedEvery int
}

// Generated is a synthetic table plus the profile behind each row.
type Generated struct {
	Table    employee.Table
	Profiles []Profile
	// MalformedRows lists the 1-based rows missing a required field.
	MalformedRows []int
}

// Generate builds cfg.Rows synthetic employees. Values are internally
// consistent: tenure never exceeds working years and working years never
// exceed the years since 18.
func Generate(ctx context.Context, cfg Config) (Generated, error) {
	if cfg.Rows < 1 {
		return Generated{}, fmt.Errorf("%w: rows must be positive, got %d", ErrInvalidConfig, cfg.Rows)
	}
	if cfg.MalformedEvery < 0 {
		return Generated{}, fmt.Errorf("%w: malformed_every must not be negative", ErrInvalidConfig)
	}
	logger.Get().Debug(ctx, "generating employees",
		logger.Int("rows", cfg.Rows),
		logger.Int("malformedEvery", cfg.MalformedEvery),
	)

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	out := Generated{
		Table:    employee.Table{Columns: Columns, Rows: make([]employee.Record, 0, cfg.Rows)},
		Profiles: make([]Profile, 0, cfg.Rows),
	}
	for i := range cfg.Rows {
		if err := ctx.Err(); err != nil {
			return Generated{}, fmt.Errorf("generation cancelled after %d rows: %w", i, err)
		}
		p := Profile(rng.IntN(int(profileCount)))
		rec := generateOne(rng, i, p)
		if cfg.MalformedEvery > 0 && (i+1)%cfg.MalformedEvery == 0 {
			delete(rec, features.Required[rng.IntN(len(features.Required))])
			out.MalformedRows = append(out.MalformedRows, i+1)
		}
		out.Table.Rows = append(out.Table.Rows, rec)
		out.Profiles = append(out.Profiles, p)
	}
	return out, nil
}

func generateOne(rng *rand.Rand, i int, p Profile) employee.Record {
	between := func(lo, hi int) int { return lo + rng.IntN(hi-lo+1) }
	level := func(lo, hi int) float64 { return float64(between(lo, hi)) }

	dept := departments[rng.IntN(len(departments))]
	roles := rolesByDepartment[dept]
	role := roles[rng.IntN(len(roles))]

	var age, working, tenure, sincePromo, hike int
	var sat [3]float64
	var balance float64
	overtime := "No"

	switch p {
	case ProfileAtRiskStar:
		age = between(24, 34)
		working = between(3, age-18)
		tenure = between(1, min(working, 6))
		sincePromo = between(2, max(2, tenure))
		hike = between(11, 14)
		sat = [3]float64{level(1, 2), level(1, 2), level(1, 3)}
		balance = level(1, 2)
		overtime = "Yes"
	case ProfileSteadyStar:
		age = between(30, 50)
		working = between(8, age-18)
		tenure = between(4, working)
		sincePromo = between(0, 2)
		hike = between(16, 24)
		sat = [3]float64{level(3, 4), level(3, 4), level(3, 4)}
		balance = level(3, 4)
	case ProfileDisengaged:
		age = between(28, 55)
		working = between(5, age-18)
		tenure = between(2, working)
		sincePromo = between(4, max(4, tenure))
		hike = between(11, 13)
		sat = [3]float64{level(1, 2), level(1, 3), level(1, 2)}
		balance = level(1, 3)
		if rng.IntN(2) == 0 {
			overtime = "Yes"
		}
	case ProfileNewcomer:
		age = between(18, 26)
		working = between(0, age-18)
		tenure = between(0, min(working, 2))
		sincePromo = 0
		hike = between(11, 16)
		sat = [3]float64{level(2, 4), level(2, 4), level(2, 4)}
		balance = level(2, 4)
	default:
		age = between(45, 60)
		working = between(20, age-18)
		tenure = between(10, working)
		sincePromo = between(0, 8)
		hike = between(11, 18)
		sat = [3]float64{level(2, 4), level(2, 4), level(2, 4)}
		balance = level(2, 4)
	}
	sincePromo = min(sincePromo, tenure)
	inRole := between(0, tenure)
	withManager := between(0, tenure)
	income := 1000 + 350*working + between(0, 2500)
	if role == "Manager" || role == "Research Director" {
		income += 6000
	}

	return employee.Record{
		"EmployeeNumber":                  employee.Number(float64(i + 1)),
		features.Age:                      employee.Number(float64(age)),
		features.Department:               employee.Text(dept),
		features.JobRole:                  employee.Text(role),
		features.MonthlyIncome:            employee.Number(float64(income)),
		features.TotalWorkingYears:        employee.Number(float64(working)),
		features.YearsAtCompany:           employee.Number(float64(tenure)),
		"YearsInCurrentRole":              employee.Number(float64(inRole)),
		features.YearsWithCurrManager:     employee.Number(float64(withManager)),
		features.YearsSinceLastPromotion:  employee.Number(float64(sincePromo)),
		"PercentSalaryHike":               employee.Number(float64(hike)),
		features.JobSatisfaction:          employee.Number(sat[0]),
		features.EnvironmentSatisfaction:  employee.Number(sat[1]),
		features.RelationshipSatisfaction: employee.Number(sat[2]),
		"WorkLifeBalance":                 employee.Number(balance),
		features.OverTime:                 employee.Text(overtime),
	}
}
