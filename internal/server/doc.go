// Package server is the rollplay web API: routing, middleware, sign-in and the JSON endpoints.
//
// # Router Infrastructure
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Sign-in
//
// [AuthHandler] runs the authorization code flow against the accounts service. The login route stores a random
// state in a short-lived cookie and the callback refuses any request whose state does not match it. After the
// code exchange the user's profile email is compared to the single allowed address; anyone else is sent back to
// the login page with an error code. Accepted users get a session row and a session cookie.
//
// # Sessions
//
// [RequireSession] resolves the session cookie through a [SessionStore] and puts the session on the request
// context. Handlers read it with [SessionFrom].
//
// # Endpoints
//
//	GET  /api/health        liveness
//	GET  /api/moods         mood catalog
//	GET  /api/me            current user and granted scopes
//	POST /api/generate      discovery search
//	POST /api/playlists     publish; 200 on success, 207 when the playlist exists but tracks failed
//	POST /api/mood-profile  static mood profile
//
// Errors are JSON bodies of the form {"errorCode", "message", "details"}. Paths no route claims get a 404
// with errorCode NOT_FOUND.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
