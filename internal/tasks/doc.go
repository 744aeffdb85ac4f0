// Package tasks orchestrates the multi-step operations behind the web app.
//
// # Core Operations
//
//  1. [Authenticator] : Resolves a usable provider credential for a session
//     - Refreshes proactively when the stored access token has expired
//     - Forces a refresh on demand after the provider rejects a token
//     - Persists every refreshed credential through the [TokenStore]
//
//  2. [SearchAggregator] : Fans a handful of queries out to catalog search
//     - Up to 5 queries, 3 pages of 10 results each
//     - Deduplicates by track id in first-seen order and stops at 40 tracks
//     - A failing query is logged and skipped
//
//  3. [Generator] : Turns discovery params into a plan and runs the aggregator for it
//
//  4. [Publisher] : Creates a playlist and fills it
//     - Fatal failures (auth, scope, creation) return a [*PublishError]
//     - Failures after creation yield a partial outcome (HTTP 207) instead of an error
//     - A 401 while adding tracks triggers exactly one forced refresh and one retry of that batch
//     - The cover upload only runs when the image upload scope was granted
//
// # Progress Reporting
//
// [Publisher.Publish] reports each phase on an optional channel. Updates use select with
// default so a slow reader never blocks publishing.
package tasks
