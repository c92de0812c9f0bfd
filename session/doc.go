// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session gates dashboard pages by role.

The gate trusts only the authToken cookie, which it verifies as a JWT.
The userData cookie is written for the browser's benefit and never read
here.

# Rules

Rules map path prefixes to allowed roles (optionally narrowed to verifier
kinds) and each role to a default page. The longest matching prefix
decides; a path no rule covers is open to every signed-in role. Rules can
be loaded from YAML:

	signIn: /auth/signin
	pages:
	  - prefix: /dashboard/verifikator/bps
	    roles: [verifikator]
	    kinds: [ADBANG]
	defaults:
	  verifikator: /dashboard/verifikator

Validate refuses rule sets where a role's default page would itself
redirect that role.
*/
package session
