// Package admission decides where registrations go when an event fills up.
//
// Every function takes a Snapshot of one event and its registrations and returns a
// Decision: the rows to insert, update and delete, plus the notifications to fire once
// the caller has committed them. Nothing here touches storage or the clock.
package admission

import (
	"slices"
	"time"

	"github.com/studentorg/events-api/internal/domain"
)

// Entry is a registration together with the registrant's standing for the event.
type Entry struct {
	domain.Registration
	Prioritized bool
}

type Snapshot struct {
	Event   domain.Event
	Entries []Entry
	Now     time.Time
}

type Candidate struct {
	UserID      uint
	Prioritized bool
	AllowPhoto  bool
}

type Decision struct {
	Insert        *domain.Registration
	Updates       []domain.Registration
	Deletes       []uint
	Notifications []domain.Notification
}

// Update records reg as changed, replacing an earlier change to the same row.
func (d *Decision) Update(reg domain.Registration) {
	for i := range d.Updates {
		if d.Updates[i].ID == reg.ID {
			d.Updates[i] = reg
			return
		}
	}

	d.Updates = append(d.Updates, reg)
}

// Empty reports whether the decision changes nothing.
func (d Decision) Empty() bool {
	return d.Insert == nil && len(d.Updates) == 0 && len(d.Deletes) == 0
}

// Admit places a new registration for the candidate.
//
// The candidate is confirmed while the event has room. Once full, a prioritized candidate
// takes the place of the earliest queued confirmed registration without priority; everyone
// else waits.
func Admit(s Snapshot, c Candidate) (Decision, error) {
	st := newState(s)

	for _, e := range st.entries {
		if e.UserID == c.UserID {
			return Decision{}, domain.ErrAlreadyRegistered
		}
	}

	reg := domain.Registration{
		EventID:    st.event.ID,
		UserID:     c.UserID,
		AllowPhoto: c.AllowPhoto,
		IsOnWait:   st.event.IsFull(st.confirmed()),
	}

	if reg.IsOnWait && c.Prioritized && st.event.HasPriorities() {
		if i := st.swapTarget(); i >= 0 {
			reg.SwapPlacesWith(&st.entries[i].Registration)
			st.changed(i, domain.NotifyDemoted)
		}
	}

	if reg.IsOnWait {
		st.notify(domain.NotifyWaitlisted, reg.UserID, nil)
	} else {
		st.notify(domain.NotifyConfirmed, reg.UserID, nil)
		st.startPaymentCountdown(reg.UserID, false)
	}

	st.decision.Insert = &reg

	return st.decision, nil
}

// Remove deletes a registration. Freeing a confirmed place on a limited event promotes the
// next waiting registration.
func Remove(s Snapshot, registrationID uint) (Decision, error) {
	st := newState(s)

	i := st.indexOf(registrationID)
	if i < 0 {
		return Decision{}, domain.ErrRegistrationNotFound
	}

	removed := st.entries[i]
	st.entries = slices.Delete(st.entries, i, i+1)
	st.decision.Deletes = append(st.decision.Deletes, removed.ID)
	st.notify(domain.NotifyRemoved, removed.UserID, nil)

	if !removed.IsOnWait && st.event.HasLimit() && !st.event.IsFull(st.confirmed()) {
		st.promoteNext(0)
	}

	return st.decision, nil
}

// Resize applies a new limit to the event and rebalances the registrations.
//
// Raising the limit promotes waiting registrations in the same order as Remove. Lowering
// it demotes confirmed registrations, those without priority first and the most recently
// queued first, and fails with ErrLimitBelowAttendees unless demote is set. At most
// |newLimit - oldLimit| registrations move; a limit of 0 means unlimited on either side.
func Resize(s Snapshot, newLimit int, demote bool) (Decision, error) {
	if newLimit < 0 {
		return Decision{}, domain.ErrInvalidLimit
	}

	st := newState(s)
	oldLimit := st.event.Limit
	st.event.Limit = newLimit

	bound := -1
	if oldLimit != 0 && newLimit != 0 {
		bound = abs(newLimit - oldLimit)
	}

	confirmed := st.confirmed()

	switch {
	case newLimit == 0:
		for st.promoteNext(0) {
		}
	case confirmed < newLimit:
		for moves := newLimit - confirmed; moves > 0 && bound != 0; moves-- {
			if !st.promoteNext(0) {
				break
			}
			bound--
		}
	case confirmed > newLimit:
		if !demote {
			return Decision{}, domain.ErrLimitBelowAttendees
		}

		for moves := confirmed - newLimit; moves > 0 && bound != 0; moves-- {
			if !st.demoteLast() {
				break
			}
			bound--
		}
	}

	return st.decision, nil
}

// Reassign moves a registration between the confirmed and waiting lists on an admin's
// request. Confirming is refused with ErrEventFull when there is no room. Moving a
// confirmed registration to the waiting list frees its place for the next waiting one.
func Reassign(s Snapshot, registrationID uint, onWait bool) (Decision, error) {
	st := newState(s)

	i := st.indexOf(registrationID)
	if i < 0 {
		return Decision{}, domain.ErrRegistrationNotFound
	}

	if st.entries[i].IsOnWait == onWait {
		return st.decision, nil
	}

	if !onWait {
		if st.event.IsFull(st.confirmed()) {
			return Decision{}, domain.ErrEventFull
		}

		st.entries[i].IsOnWait = false
		st.changed(i, domain.NotifyPromoted)
		st.startPaymentCountdown(st.entries[i].UserID, true)

		return st.decision, nil
	}

	st.entries[i].IsOnWait = true
	st.changed(i, domain.NotifyDemoted)

	if st.event.HasLimit() && !st.event.IsFull(st.confirmed()) {
		st.promoteNext(registrationID)
	}

	return st.decision, nil
}

type state struct {
	event    domain.Event
	entries  []Entry
	now      time.Time
	decision Decision
}

func newState(s Snapshot) *state {
	entries := slices.Clone(s.Entries)
	slices.SortFunc(entries, func(a, b Entry) int {
		return domain.CompareQueue(a.Registration, b.Registration)
	})

	return &state{
		event:   s.Event,
		entries: entries,
		now:     s.Now,
	}
}

func (st *state) indexOf(registrationID uint) int {
	return slices.IndexFunc(st.entries, func(e Entry) bool {
		return e.ID == registrationID
	})
}

func (st *state) confirmed() int {
	n := 0
	for _, e := range st.entries {
		if !e.IsOnWait {
			n++
		}
	}

	return n
}

// swapTarget returns the earliest queued confirmed entry without priority, or -1.
func (st *state) swapTarget() int {
	return slices.IndexFunc(st.entries, func(e Entry) bool {
		return !e.IsOnWait && !e.Prioritized
	})
}

// promoteNext confirms the earliest queued waiting entry, preferring prioritized ones when
// the event has priorities. The registration with id skip is never picked.
func (st *state) promoteNext(skip uint) bool {
	pick := -1
	for i, e := range st.entries {
		if !e.IsOnWait || e.ID == skip {
			continue
		}

		if pick < 0 {
			pick = i
		}

		if !st.event.HasPriorities() || e.Prioritized {
			pick = i
			break
		}
	}

	if pick < 0 {
		return false
	}

	st.entries[pick].IsOnWait = false
	st.changed(pick, domain.NotifyPromoted)
	st.startPaymentCountdown(st.entries[pick].UserID, true)

	return true
}

// demoteLast moves the most recently queued confirmed entry to the waiting list,
// preferring entries without priority.
func (st *state) demoteLast() bool {
	pick := -1
	for i := len(st.entries) - 1; i >= 0; i-- {
		e := st.entries[i]
		if e.IsOnWait {
			continue
		}

		if pick < 0 {
			pick = i
		}

		if !e.Prioritized {
			pick = i
			break
		}
	}

	if pick < 0 {
		return false
	}

	st.entries[pick].IsOnWait = true
	st.changed(pick, domain.NotifyDemoted)

	return true
}

func (st *state) changed(i int, kind domain.NotificationKind) {
	st.decision.Update(st.entries[i].Registration)
	st.notify(kind, st.entries[i].UserID, nil)
}

func (st *state) notify(kind domain.NotificationKind, userID uint, deadline *time.Time) {
	st.decision.Notifications = append(st.decision.Notifications, domain.Notification{
		Kind:       kind,
		EventID:    st.event.ID,
		UserID:     userID,
		OccurredAt: st.now,
		Deadline:   deadline,
	})
}

func (st *state) startPaymentCountdown(userID uint, fromWaitingList bool) {
	if !st.event.IsPaidEvent || st.event.PaidInformation == nil {
		return
	}

	paytime := st.event.PaidInformation.Paytime
	if fromWaitingList {
		paytime = domain.PromotedPaytime
	}

	deadline := st.now.Add(paytime + domain.PaymentGrace)
	st.notify(domain.NotifyPaymentCountdown, userID, &deadline)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}

	return n
}
