// Package syncer keeps a per-user, in-memory mirror of the clients and
// entries held by the server.
//
// Mutations are sent to the server and are not applied locally; the
// mirror changes only through a full Load or through change events
// delivered by the two live subscriptions. Store failures never reach the
// caller as errors. They are reported through a notify.Notifier and leave
// the mirror untouched.
package syncer
