// Package models defines the domain values shared by the discovery, search and publish workflows.
//
// # Credentials
//
// [Credential] is the provider token pair for the single signed-in principal. It is passed into
// and returned from operations by value; persistence only happens through a token store after a
// refresh. [ScopeSet] parses the provider's space separated scope grant.
//
// # Catalog
//
// [Track] is an immutable search result keyed by its provider id.
//
// # Discovery
//
// [RollContext] captures one die roll over an ordered genre list.
//
// # Publishing
//
// [PublishRequest] is validated before any remote call. [PublishOutcome] is the terminal report of
// one publish attempt, including warnings for steps that failed after the playlist already existed.
//
// # Sessions
//
// [Session] binds a browser cookie to a [User] and its [Credential]. [PublishRecord] is the
// persisted summary of a publish attempt.
package models
