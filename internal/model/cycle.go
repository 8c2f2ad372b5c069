package model

import "time"

// Cycle is an academic period (a school year or term). Exams must fall
// entirely inside their cycle's window.
// swagger:model Cycle
type Cycle struct {
	BaseModel

	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Active    bool      `gorm:"default:true" json:"active"`
}

func (Cycle) TableName() string {
	return "cycles"
}

// Contains reports whether the [start, end] window fits inside the cycle.
func (c *Cycle) Contains(start, end time.Time) bool {
	return !start.Before(c.StartDate) && !end.After(c.EndDate)
}
