// Package natsbus connects the notifier to NATS.
//
// Publisher mirrors every notification on a per-user subject so other
// services (mobile push, chat bridges) can consume them. ChangeListener
// receives task and list change events published by the CRUD service and
// forwards them to the in-process event emitter.
package natsbus
