// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

// Package testinfra starts throwaway PostgreSQL and Redis containers for
// integration tests using testcontainers-go.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/database/... ./internal/auth/...
//
// Tests call SkipIfNoDocker first so the suite degrades to a skip on hosts
// without a Docker daemon.
//
//	func TestStorePostgres(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    pg, err := testinfra.NewPostgresContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, pg)
//	    // open database.New with pg.URL
//	}
package testinfra
