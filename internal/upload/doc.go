// BetaBuddy - Beta Testing Marketplace
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/betabuddy

// Package upload stores multipart files (app screenshots, build archives and
// avatars) on local disk and serves them under /uploads/.
//
// Stored names are <field>-<unixMillis>-<random><ext>; the client filename
// contributes only its extension. Files saved for a request that later fails
// are removed with Store.Remove.
package upload
