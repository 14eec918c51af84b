// Package api wires collections onto HTTP routes.
//
// # Overview
//
// Each configured (path template, collection factory) pair yields two
// routes: the collection route handles listing and creation, and the
// element route, formed by appending "/:elem_id" to the template, handles
// retrieval, replacement and removal of a single object.
//
// # Wire Format
//
//	GET    /<collection>        newline-delimited JSON objects {id, data}
//	POST   /<collection>        JSON body -> {"id": "<new-id>"}
//	GET    /<collection>/<id>   {id, data} or 404
//	PUT    /<collection>/<id>   JSON body -> {"success": true}
//	DELETE /<collection>/<id>   {"success": true}
//
// Collection-layer failures are logged and mapped to transport responses:
// invalid arguments to 400, missing update targets to 404, and storage
// failures to 500 with an operation-specific reason string.
package api
