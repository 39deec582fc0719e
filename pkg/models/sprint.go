package models

import "time"

// Sprint groups tasks into a time-boxed iteration. Status is free-form
// (typically planned/active/completed) and carries no state machine.
type Sprint struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Goals     []string  `json:"goals,omitempty"`
	TaskIDs   []string  `json:"tasks"`
	Status    string    `json:"status"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
}
