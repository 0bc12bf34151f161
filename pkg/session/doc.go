// Package session holds the authenticated actor: an opaque bearer token and
// the profile returned at login. A Store is explicitly constructed and passed
// to the client, the route guard and the TUI; there is no package-level state.
package session
