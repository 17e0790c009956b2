// Package api provides the HTTP handlers for the storytelling platform:
// authentication, account and family management, characters, stories and
// learning goals. Handlers decode and validate requests, delegate to the
// service layer, and translate service errors into sanitized HTTP responses.
package api
