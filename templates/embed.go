// Package templates holds the TypeScript sources installed into a Strapi
// project when no other template source is configured.
package templates

import "embed"

// FS is rooted at the template set: "config.ts", "util/...", "api/...".
//
//go:embed config.ts util api
var FS embed.FS
