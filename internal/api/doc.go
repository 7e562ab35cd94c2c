// Package api exposes the recommendation pipeline, the chat orchestrator and
// per-user status lists over HTTP.
//
// Requests identify their user through the X-User-ID header. When an API
// token is configured every /api route also requires
// "Authorization: Bearer <token>". Responses are JSON; errors use
// {"error": "..."} with a matching status code.
package api
