// Package delivery sends grouped notifications to recipients.
//
// A notification goes to the real-time channel first and then, best
// effort, by email. The two legs fail independently and a failure for one
// recipient never affects another. Registry tracks the active real-time
// connection of each recipient for the transport adapters in
// internal/platform/realtime.
package delivery
