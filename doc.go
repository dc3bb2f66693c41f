// Package auth provides the authentication and authorization layer for the
// ordering platform: credential verification, JWT issuance, a session
// registry that makes logout effective before token expiry, a password
// reset flow, and role based access control.
//
// Identity and sessions:
//   - Users carry a closed Role (client, colaborador, leader, manager,
//     admin) and an active flag. Auther.Login verifies credentials, issues
//     an HS256 token, and records a session row; Logout deletes the row so
//     the token stops working immediately. Every protected request consults
//     the registry, the bun backed Sessions repository or the Redis backed
//     RedisSessionStore.
//
// Password resets:
//   - InitializePasswordResetHandler persists only a bcrypt hash of the
//     reset secret and acknowledges identically whether or not the email has
//     an account. FinalizePasswordResetHandler verifies against the newest
//     unexpired record for the email and consumes it in the same
//     transaction.
//
// Access control:
//   - middleware/jwtware runs the request pipeline: extract bearer token,
//     verify, check the session registry, re-check the account's active
//     flag, then authorize by role. The colaborador role is additionally
//     confined to a fixed set of path prefixes. Protected and
//     RequireOwnership wire the pipeline for fiber apps.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     reset handlers to describe login, logout, impersonation, and password
//     reset events. Sinks run best-effort (errors are logged) so you can
//     forward to a database or queue without blocking authentication.
package auth
