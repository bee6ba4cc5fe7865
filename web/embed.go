// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package web provides embedded static assets (CSS, JS) served at /static/.
// In development the admin layout loads HTMX from its CDN; production
// builds vendor it first:
//
//	curl -sSfo web/static/htmx.min.js https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js
package web

import "embed"

// StaticFS embeds the web/static/ directory tree.
//
//go:embed all:static
var StaticFS embed.FS
