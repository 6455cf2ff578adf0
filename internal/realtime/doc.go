// Package realtime implements the WebSocket notification layer: a registry of
// live connections, room membership keyed by user or project, and best-effort
// fan-out of domain events to the connections in the target rooms.
//
// Rooms are in-process only. Membership does not survive a restart, and a
// deployment with more than one server process needs an external relay.
package realtime
