// Package roomcast is a library for pushing server-sent events to named
// groups of subscribers.
//
// This library provides a room based publish/subscribe interface for
// generating SSE streams. Subscribers join a room under an opaque user
// identity, and a single user may hold any number of simultaneous streams
// (browser tabs, devices). Messages can be addressed to one user in a room,
// to everyone in a room, or to either of those across several rooms at once.
// Each open stream is supervised with periodic heartbeat frames and is torn
// down exactly once when the client disconnects, a heartbeat write fails, or
// application code closes it.
//
// Typical usage of this package is:
//	* Create a Registry with NewRegistry and keep it for the process
//	  lifetime.
//	* In the HTTP handler for the SSE endpoint resolve the room with
//	  Registry.GetOrCreate and call Room.Subscribe, it blocks for the
//	  duration of the connection.
//	* From application code deliver messages with Registry.Route, or with
//	  Room.Broadcast and Room.SendTo when a *Room is already at hand.
//	* Use the Hooks callbacks to observe per-stream connect and disconnect
//	  events.
//
// Payload serialization is pluggable. The process wide default marshals to
// JSON, rooms can be created with their own encoder and individual sends can
// override it again.
package roomcast
