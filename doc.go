// Package microblog implements a small social blogging service: user
// accounts with hashed credentials, cookie based JWT sessions, 140
// character microposts, and an asymmetric follower graph.
//
// Sessions:
//   - Auther verifies credentials against the Users repository and mints
//     signed session tokens. RouteAuthenticator moves those tokens in and
//     out of an HTTP-only cookie, remembering rejected routes so sign-in
//     can return the visitor to where they were headed.
//   - SessionGuard is the route middleware layer. RequireSignedIn resolves
//     the cookie into a User and stores it in locals, RequireSelf and
//     RequireAdmin add the authorization policy on top, and LoadSession
//     hydrates pages that render both anonymous and signed-in variants.
//
// Persistence:
//   - RepositoryManager groups the Users, Microposts, and Follows stores,
//     all backed by Bun. Listings are paginated thirty records per page.
//   - Follow edges are unique per (follower, followed) pair at the storage
//     layer; repeated follows are no-ops and self-follows are rejected.
//
// HTTP:
//   - Controllers mirror the classic resource layout (users, sessions,
//     microposts, relationships, static pages) and render server-side
//     views with flash messaging for redirects.
package microblog
