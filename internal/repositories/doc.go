// Package repositories implements SQLite persistence for the mindmap domain.
//
// Key Implementations:
//   - [UserRepository] : idempotent upsert of provider accounts
//   - [PlaylistRepository] : saved CDs, written together with their tracks in one transaction
//   - [SessionRepository] : server-side browsing sessions (token, oauth state, seen-set)
//
// Repositories accept a [*sql.DB]; helpers that must join an outer transaction take a [querier] so the same SQL runs against either.
package repositories
