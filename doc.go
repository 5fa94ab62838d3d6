// Package accounts provides the authentication surface for a web
// application: signup, password login, JWT access/refresh token issuance
// with rotation, and email confirmation workflows.
//
// Tokens:
//   - Every token is an HS256 JWT whose subject is the account email and
//     whose scope claim marks it as an access, refresh, or email token.
//     Access tokens authorize API calls, refresh tokens mint new pairs
//     and are persisted per user so they can be rotated and revoked,
//     email tokens confirm an address exactly once.
//   - A refresh presented against a stale or missing stored token clears
//     the stored token, cutting off both copies.
//
// Persistence:
//   - Users live in a Bun backed repository. Targeted mutations
//     (refresh token rotation, email confirmation, login bookkeeping)
//     run as raw SQL so nullable columns reset reliably.
//
// Email:
//   - Confirmation emails are fire and forget. The Dispatcher drains a
//     bounded queue off the request path; a saturated queue drops the
//     message with a warning rather than blocking signup.
//
// HTTP:
//   - RegisterAuthRoutes mounts the public endpoints, RegisterUserRoutes
//     mounts the token protected account endpoints behind the jwtware
//     middleware, which rejects any token without the access scope.
package accounts
