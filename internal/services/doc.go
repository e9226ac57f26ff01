// Package services implements the typed HTTP client for the video service API.
//
// # Endpoints
//
// [Client] wraps the five calls the engine makes:
//   - POST /videos/{id}/like : toggles a like, answers {liked, likes_count}
//   - POST /users/follow/{id} : toggles a follow, answers {is_following}
//   - POST /videos/{id}/view : records a view
//   - GET /notifications/unread : lists unread notifications
//   - POST /notifications/{id}/read : acknowledges a notification
//
// # Authentication
//
// A configured token is attached as a bearer header by an [oauth2.Transport] built from a
// static token source. The engine never refreshes or negotiates tokens.
//
// # Error Handling
//
// Responses are mapped to sentinel errors from the shared package:
//   - [shared.ErrNotFound] : 404, the entity no longer exists
//   - [shared.ErrNotAuthenticated] : 401 or 403
//   - [shared.ErrNetworkFailure] : transport errors, undecodable bodies and every other non-2xx status
//
// Consumers declare the narrow interface they need (engagement, views, notify) and accept
// a *Client or a test double.
package services
