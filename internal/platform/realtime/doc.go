// Package realtime serves the websocket endpoint clients keep open to
// receive notifications, and pushes events to them.
//
// Protocol, all frames JSON text messages:
//
//	client -> {"event":"authenticate","token":"<access token>"}
//	server -> {"event":"authenticated","data":{"userId":"...","connectionId":"..."}}
//	server -> {"event":"task-reminder","data":{...}}
//
// A connection receives notifications only after authenticating. A user
// has one active connection; authenticating a new one replaces the old.
package realtime
