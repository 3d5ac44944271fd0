package domain

import "time"

type TableType string

const (
	TableRound TableType = "round"
	TableRect  TableType = "rect"
)

const (
	MinTableCapacity = 1
	MaxTableCapacity = 30
	MinPlanDimension = 200
)

type Table struct {
	ID       string
	Label    string
	Type     TableType
	X        float64
	Y        float64
	Rotation float64
	Capacity int
	GuestIDs []string
}

// SeatingPlan is one canvas of tables. Tables are always read and written
// as a whole array; there is no per-table update granularity.
type SeatingPlan struct {
	Slug      string
	Name      string
	Width     float64
	Height    float64
	Tables    []Table
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PlanDefaults struct {
	Name   string
	Width  float64
	Height float64
}

// PlanDetails is a partial update of plan metadata.
type PlanDetails struct {
	Name   *string
	Width  *float64
	Height *float64
}

func SanitizeTableType(t string) TableType {
	if t == string(TableRect) {
		return TableRect
	}
	return TableRound
}

func Clamp(v, min, max float64) float64 {
	if v != v { // NaN
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func ClampCapacity(c int) int {
	if c < MinTableCapacity {
		return MinTableCapacity
	}
	if c > MaxTableCapacity {
		return MaxTableCapacity
	}
	return c
}
