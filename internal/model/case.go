package model

import "time"

// Case is the minimal case record consumed by the document pipeline.
// A document's case reference must resolve to one of these rows before
// the document may be created.
type Case struct {
	ID         string    `json:"id"`
	CaseNumber string    `json:"case_number"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	OpenDate   time.Time `json:"open_date"`
	CreatedAt  time.Time `json:"created_at"`
}
