package tracker

import "embed"

// embeddedAssets contains static assets shipped with the tracker:
// app.css, app.js, favicon.svg, and the affiliate network catalog.
//
//go:embed assets/*
var embeddedAssets embed.FS
