// Package chat drives one conversational turn: it classifies the user's
// latest message, dispatches to the matching recommendation entry point and
// persists the transcript.
//
// The classifier sees a sliding window of the transcript rather than the
// whole conversation. Concurrent turns on the same session may interleave
// their transcript writes; callers that need strict ordering serialize turns
// per session themselves.
package chat
