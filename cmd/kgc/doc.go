/*
Command kgc compiles KG grammar definitions and runs parses with them.

	kgc generate [--out dir] [--package name] [--diff] [--force] path...
	kgc parse --grammar g.kg [--start rule] [--columns ids] file...
	kgc ebnf file.kg
	kgc repl --grammar g.kg [--start rule]

Paths given to 'generate' may be KG files or directories, which are searched
for KG files recursively. Configuration is read from kgc.yaml or kgc.toml in
the current directory, or from the file given with --config. Flags override
configuration values.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'koopa.cli'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.cli")
}
