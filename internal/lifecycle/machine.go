// Package lifecycle owns the delivery status progression of a sale:
// which states exist, which moves are allowed and what each move requires.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"backoffice-service/internal/models"
)

// DateLayout is the calendar date format used for sale and delivery dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrGuardRejected     = errors.New("transition rejected")
)

type Action string

const (
	ActionSchedule      Action = "schedule"
	ActionAssignCourier Action = "assign_courier"
	ActionMarkDelivered Action = "mark_delivered"
)

type transition struct {
	from models.SaleStatus
	to   models.SaleStatus
}

var transitions = map[Action]transition{
	ActionSchedule:      {from: models.StatusPendingScheduling, to: models.StatusScheduled},
	ActionAssignCourier: {from: models.StatusScheduled, to: models.StatusInDelivery},
	ActionMarkDelivered: {from: models.StatusInDelivery, to: models.StatusDelivered},
}

var order = []models.SaleStatus{
	models.StatusPendingScheduling,
	models.StatusScheduled,
	models.StatusInDelivery,
	models.StatusDelivered,
}

// Rank returns the position of s in the progression, or -1 for unknown states.
func Rank(s models.SaleStatus) int {
	for i, known := range order {
		if known == s {
			return i
		}
	}
	return -1
}

func Valid(s models.SaleStatus) bool { return Rank(s) >= 0 }

// Aggregate is the least advanced status among the items of a transaction.
func Aggregate(statuses []models.SaleStatus) models.SaleStatus {
	if len(statuses) == 0 {
		return ""
	}
	least := statuses[0]
	for _, s := range statuses[1:] {
		if Rank(s) < Rank(least) {
			least = s
		}
	}
	return least
}

// Apply returns the status reached by performing action on current.
func Apply(action Action, current models.SaleStatus) (models.SaleStatus, error) {
	t, ok := transitions[action]
	if !ok {
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidTransition, action)
	}
	if current != t.from {
		return "", fmt.Errorf("%w: cannot %s a sale in status %q", ErrInvalidTransition, action, current)
	}
	return t.to, nil
}

// Machine applies guarded transitions against the business calendar.
type Machine struct {
	loc *time.Location
	now func() time.Time
}

func NewMachine(loc *time.Location, now func() time.Time) *Machine {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}
	return &Machine{loc: loc, now: now}
}

// Today is the current calendar date in the business time zone.
func (m *Machine) Today() string {
	return m.now().In(m.loc).Format(DateLayout)
}

func (m *Machine) Schedule(current models.SaleStatus, date, window string) (models.SaleStatus, error) {
	date = strings.TrimSpace(date)
	window = strings.TrimSpace(window)
	if date == "" || window == "" {
		return "", fmt.Errorf("%w: delivery date and window are required", ErrGuardRejected)
	}
	if window != models.WindowMorning && window != models.WindowAfternoon {
		return "", fmt.Errorf("%w: unknown delivery window %q", ErrGuardRejected, window)
	}
	day, err := time.ParseInLocation(DateLayout, date, m.loc)
	if err != nil {
		return "", fmt.Errorf("%w: delivery date must be YYYY-MM-DD", ErrGuardRejected)
	}
	today, _ := time.ParseInLocation(DateLayout, m.Today(), m.loc)
	if day.Before(today) {
		return "", fmt.Errorf("%w: delivery date %s is in the past", ErrGuardRejected, date)
	}
	return Apply(ActionSchedule, current)
}

func (m *Machine) AssignCourier(current models.SaleStatus, courierID string) (models.SaleStatus, error) {
	if strings.TrimSpace(courierID) == "" {
		return "", fmt.Errorf("%w: a courier is required", ErrGuardRejected)
	}
	return Apply(ActionAssignCourier, current)
}

func (m *Machine) MarkDelivered(current models.SaleStatus, deliveryDate string) (models.SaleStatus, error) {
	next, err := Apply(ActionMarkDelivered, current)
	if err != nil {
		return "", err
	}
	if today := m.Today(); deliveryDate != today {
		return "", fmt.Errorf("%w: delivery is scheduled for %s, today is %s", ErrGuardRejected, deliveryDate, today)
	}
	return next, nil
}
