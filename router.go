package roomcast

import "errors"

// ErrBadAddress is returned by Route for an envelope that does not set
// exactly one of Room and Rooms.
var ErrBadAddress = errors.New("roomcast: envelope must set exactly one of Room and Rooms")

// Envelope addresses a message for delivery. Exactly one of Room and Rooms
// must be set. An empty User targets everyone in the addressed rooms, a
// non-empty User narrows delivery to that user's streams. The four
// resulting shapes are:
//
//	{Room}        everyone in one room
//	{Room, User}  one user in one room
//	{Rooms}       everyone across several rooms
//	{Rooms, User} one user across several rooms
type Envelope struct {
	Message

	User  string
	Room  string
	Rooms []string
}

// Route resolves the envelope addressing and fans the message out through
// the corresponding rooms. Addressed rooms that do not exist are silently
// skipped, rooms may legitimately not have been created yet. Delivery per
// room is independent and best effort; the returned error joins encoder
// failures from the visited rooms, malformed addressing fails fast with
// ErrBadAddress.
func (reg *Registry) Route(env Envelope, opts *SendOptions) error {
	single := env.Room != ""
	multi := env.Rooms != nil
	if single == multi {
		return ErrBadAddress
	}

	names := env.Rooms
	if single {
		names = []string{env.Room}
	}

	var errs []error
	for _, name := range names {
		room, ok := reg.Get(name)
		if !ok {
			continue
		}
		var err error
		if env.User != "" {
			err = room.SendTo(env.User, env.Message, opts)
		} else {
			err = room.Broadcast(env.Message, opts)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
