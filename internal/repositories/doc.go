// Package repositories implements SQLite persistence for sessions and publish history.
//
// Key Implementations:
//   - [SessionRepository] : Sessions binding the cookie id to the signed-in user and their provider credential.
//     It also serves as the token store consulted and updated by the publisher.
//   - [PublishLogRepository] : One row per publish attempt, listed by the operator CLI.
//
// Timestamps are stored in UTC truncated to the second so that stored values compare correctly as text.
package repositories
