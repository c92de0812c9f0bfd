// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package upstream is the HTTP client for the external REST API that owns
every proposal, user and document.

	client := upstream.New(cfg.APIURL, cfg.APITimeout)
	resp, err := client.Do(ctx, upstream.Request{
		Method:   "GET",
		Resource: "usulan/bangunan-gedung/asb/12",
		Token:    bearer,
	})

Each call runs under its own timeout (30 s by default). A timeout returns
an error wrapping ErrTimeout; any other transport failure wraps
ErrUnavailable. Non-2xx responses are not errors: check resp.OK() and use
resp.ErrorMessage() for the upstream's "message" or "error" field.

Nothing is retried. A caller that wants another attempt asks the user.
*/
package upstream
