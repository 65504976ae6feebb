package domain

import "time"

// Employee is the example target record type shipped with the default
// EMPLOYEES configuration. Optional columns map to pointers so a nullable
// field can round-trip as NULL.
type Employee struct {
	ID         int64      `json:"id"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Position   *string    `json:"position,omitempty"`
	Department *string    `json:"department,omitempty"`
	HireDate   *time.Time `json:"hireDate,omitempty"`
	Salary     *string    `json:"salary,omitempty"`
}
