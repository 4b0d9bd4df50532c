// Package server serves the mindmap web app.
//
// # Router
//
// [BasicRouter] wraps [http.ServeMux] with a [Middleware] stack. Routes use method-qualified patterns
// ("GET /cd/{id}"), so other methods get a 405 from the mux. A [Handler] may own several routes, as
// [AuthHandler] does for /login, /callback and /logout.
//
// # Request pipeline
//
// [Server.Handler] wraps the router in, from the outside in:
//   - gorilla/handlers RecoveryHandler
//   - gorilla/handlers CombinedLoggingHandler, writing through the app logger
//   - the session middleware, which loads the cookie's [models.Session] into the context and saves it
//     after the handler if it was modified
//
// /healthz is registered ahead of the session middleware so health checks never touch the database.
//
// # Sessions
//
// Sessions are server-side rows keyed by the mindmap_session cookie. They hold the OAuth token, the pending
// OAuth state, and the seen-set. A session is created lazily on /login.
//
// Protected pages obtain a catalog handle through the [TokenEnsurer]; when the token cannot be used or
// refreshed the token is dropped and the user is sent back through /login.
package server
