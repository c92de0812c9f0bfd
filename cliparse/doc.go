// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Each setting is taken from the first of:

 1. CLI flag
 2. Environment variable
 3. The .env file (-env-file, default ".env"); it never overrides a
    variable that is already set
 4. Default

# Settings

	flag          env                        default
	-p            PORT                       3318
	-api          NEXT_PUBLIC_API_URL/API_URL (required)
	-api-timeout  NEXT_PUBLIC_API_TIMEOUT    30000 (ms)
	-env          NODE_ENV/APP_ENV           development
	-jwt-secret   JWT_SECRET                 (required)
	-d            DATABASE_URL               file:usulan.db
	-t            DATABASE_TYPE              sqlite
	-redis        REDIS_URL                  in-memory store
	-static       STATIC_DIR                 pages not served
	-pages        PAGE_RULES_FILE            built-in rules
	-letters      LETTER_DIR                 letters not archived
	-rpm          RATE_LIMIT_PER_MINUTE      120
	-trusted-proxies TRUSTED_PROXIES         none (comma-separated IPs or CIDRs)

Config.SecureCookies is true when the environment is "production".
*/
package cliparse
