// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin session management for the dashboard.

# Sessions

Sessions are issued by SignIn against the configured admin credentials and
carried as HS256 JWTs:

	token, sess, err := svc.SignIn(email, password, clientIP)
	sess, err = svc.Get(token)
	err = svc.SignOut(token)

The JWT gives the token integrity and an expiry the client can read; the
service additionally keeps a registry of live sessions keyed by the token
ID, so SignOut revokes immediately and a process restart invalidates
everything outstanding. Credential comparison is constant-time.

# Sign-in lockout

Failed attempts are counted per (email, hashed client IP). Five consecutive
failures lock the pair out for fifteen minutes; attempts during the lockout
fail with ErrRateLimited without touching the credentials. A successful
sign-in resets the count.

# Change events

OnChange registers a callback for sign-in and sign-out events, the shape
the dashboard uses to react to session state:

	release := svc.OnChange(func(e auth.Event) { ... })
	defer release()

# IP Hashing

For privacy-preserving lockout scoping:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256; raw addresses are
never kept.
*/
package auth
