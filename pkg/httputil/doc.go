// Package httputil provides HTTP utilities for standardized request and
// response handling.
//
// # Response Helpers
//
// JSON responses:
//
//	httputil.WriteJSON(w, http.StatusOK, data)
//	httputil.WriteSuccess(w, data)
//	httputil.WriteCreated(w, resource)
//
// Error responses:
//
//	httputil.WriteError(w, http.StatusBadRequest, err)
//	httputil.WriteBadRequest(w, "Invalid input")
//	httputil.WriteNotFoundError(w, "Object not found")
//	httputil.WriteErrorMessage(w, http.StatusInternalServerError, "Failed to retrieve object")
//
// # Request Parsing
//
// JSON parsing:
//
//	var body map[string]any
//	if !httputil.ParseJSONOrError(w, r, &body) {
//		return // Error response already written
//	}
//
// Path parameters:
//
//	vars := httputil.GetPathVars(r)
//
// # Middleware
//
// RequestIDMiddleware, LoggingMiddleware, CORSMiddleware and
// RecoveryMiddleware wrap the router so that every request carries an id
// and a log line, cross-origin callers are answered, and panics surface
// as plain 500 responses.
package httputil
