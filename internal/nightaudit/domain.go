// Package nightaudit implements the end-of-day close for the property.
package nightaudit

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RunStatus enumerates audit run lifecycle states.
type RunStatus string

const (
	StatusInProgress            RunStatus = "IN_PROGRESS"
	StatusCompleted             RunStatus = "COMPLETED"
	StatusCompletedWithWarnings RunStatus = "COMPLETED_WITH_WARNINGS"
	StatusFailed                RunStatus = "FAILED"
)

// Steps records which stages of a run finished. Persisted as JSONB so the
// run history shows exactly how far a failed run got.
type Steps struct {
	RoomChargesPosted  bool `json:"roomChargesPosted"`
	BusinessDateRolled bool `json:"businessDateRolled"`
	ReportGenerated    bool `json:"reportGenerated"`
	EmailSent          bool `json:"emailSent"`
}

// Summary aggregates the night's figures. Persisted as JSONB on the run.
type Summary struct {
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	OccupiedRooms int             `json:"occupiedRooms"`
	Arrivals      int             `json:"arrivals"`
	Departures    int             `json:"departures"`
	CheckedOut    int             `json:"checkedOut"`
	EntriesPosted int             `json:"entriesPosted"`
}

// AuditRun is a single execution of the night audit for one business date.
type AuditRun struct {
	ID           int64
	BusinessDate time.Time
	Status       RunStatus
	Steps        Steps
	Summary      Summary
	ErrorMessage string
	RunByID      int64
	RunBy        string
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Outcome classifies how a completed run ended.
type Outcome string

const (
	OutcomeOK      Outcome = "OK"
	OutcomeWarning Outcome = "WARNING"
)

// RunResult is returned to callers of Run. Warnings carry non-fatal
// degradations such as a failed report delivery.
type RunResult struct {
	Run      AuditRun
	Outcome  Outcome
	Warnings []string
}

var (
	// ErrAlreadyAudited indicates the business date was closed previously.
	ErrAlreadyAudited = errors.New("nightaudit: business date already audited")
	// ErrAuditInProgress indicates another audit run holds the lock.
	ErrAuditInProgress = errors.New("nightaudit: audit already in progress")
	// ErrRunNotFound indicates no run matches the requested id.
	ErrRunNotFound = errors.New("nightaudit: run not found")
)
