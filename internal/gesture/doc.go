// Package gesture emits crack triggers from a two-hand pull-apart gesture.
//
// An Engine runs at most one session. A session loads a hand model, opens
// the camera, waits for the stream to deliver metadata and then processes
// frames one at a time:
//
//	idle -> model_loading -> camera_pending -> tracking
//	model_loading | camera_pending -> error
//	any -> disabled
//
// Every session exit path releases the camera and the model. Disable waits
// for that release before returning. Error ends the session, not the
// feature; Enable starts a fresh one.
package gesture
