// Package stdlib embeds Noolang's standard-library prelude source, auto-
// loaded by internal/module.Loader into every session's ambient scope
// before the user's program runs (spec.md's Supplemental features:
// "stdlib prelude ... auto-loaded by the module loader before the
// user's program").
package stdlib

import _ "embed"

//go:embed prelude.noo
var PreludeSource string
