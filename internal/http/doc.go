// Package http provides HTTP handlers and middleware for the workshop planner API.
//
// The router exposes the following endpoints:
//   - GET /catalog, GET /purposes: the activity catalog and the purpose tags
//     that bias selection.
//   - POST /workshops: one-off generation from a `generateRequest` body. Nothing
//     is stored.
//   - POST /workshops/preview, POST /workshops/regenerate: resolve a workshop
//     under its stable id (reusing a stored agenda) or under a fresh id.
//   - GET /workshops/{id}/sessions, DELETE /workshops/{id}/sessions: read or
//     discard the stored agenda.
//   - POST /workshops/{id}/replace, POST /workshops/{id}/edit,
//     POST /workshops/{id}/start-time: agenda edits. Each body carries the
//     current `workshop` and the response is the updated workshop.
//   - GET /library, POST /library, POST /library/drafts, GET|PUT|DELETE
//     /library/{id}, GET /library/{id}/share: saved-workshop library.
//   - GET /library/autosave, PUT /library/autosave: the auto-saved form.
//   - GET /shared/{token}: decodes a share token back into a workshop.
//   - GET /healthz: liveness probe, 204 with no body.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth. Errors are rendered as
// {"error_code","message","errors"}.
package http
