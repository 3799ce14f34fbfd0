package types

import "time"

// SessionID uniquely identifies a conference session.
type SessionID string

// String returns the raw session identifier.
func (id SessionID) String() string {
	return string(id)
}

// Speaker describes one presenter of a session.
type Speaker struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Session holds the details of a single conference session.
//
// Sessions are value objects: once loaded they are never mutated in place.
// The controller replaces the whole Session pointer in ViewState on each
// successful load.
type Session struct {
	// ID uniquely identifies the session across the whole schedule.
	ID SessionID `json:"id"`

	// Title is the session title in the schedule's default language.
	Title string `json:"title"`

	// Description is the full session abstract. May be long; the view layer
	// truncates it until the description is expanded.
	Description string `json:"description"`

	// Speakers lists the presenters, in billing order.
	Speakers []Speaker `json:"speakers"`

	// Room names the physical or virtual room.
	Room string `json:"room"`

	// StartsAt and EndsAt bound the session's time slot.
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`

	// IsFavorited reports whether the current attendee has favorited the
	// session, as of the collection's load time.
	IsFavorited bool `json:"isFavorited"`
}

// SessionCollection is one consistent snapshot of the schedule, as supplied
// by the Repository's session stream. It serializes as a JSON array.
type SessionCollection []Session

// FindByID returns the session with the given id, or nil when the collection
// does not contain it.
func (c SessionCollection) FindByID(id SessionID) *Session {
	for i := range c {
		if c[i].ID == id {
			return &c[i]
		}
	}

	return nil
}
