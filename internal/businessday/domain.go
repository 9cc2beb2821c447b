// Package businessday owns the hotel's operating date, which advances once
// per night audit and is decoupled from the wall clock.
package businessday

import (
	"errors"
	"time"
)

// Status enumerates business day states.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// BusinessDay is the singleton operating-date record. Seq increments on every
// rollover and guards conditional updates.
type BusinessDay struct {
	Date          time.Time
	LastAuditDate *time.Time
	Status        Status
	Seq           int64
	UpdatedAt     time.Time
}

// DateString formats the operating date as YYYY-MM-DD.
func (d BusinessDay) DateString() string {
	return d.Date.Format("2006-01-02")
}

// Next returns the following calendar day.
func (d BusinessDay) Next() time.Time {
	return d.Date.AddDate(0, 0, 1)
}

var (
	// ErrNotInitialised indicates the singleton row does not exist yet.
	ErrNotInitialised = errors.New("businessday: not initialised")
	// ErrSeqConflict indicates the record changed since it was read.
	ErrSeqConflict = errors.New("businessday: sequence conflict")
)

// Truncate normalises a timestamp to a date in UTC.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
