/*
Package batch runs parses and grammar generations over many files.

Results of a batch of parses are collected in a Session. A session is an
explicit object owned by its consumer, e.g. a command or an interactive
result view; there is no process-wide state. Sessions render their results
as tables, with columns selected from a declarative column set.

Generation of Go code from KG files runs on a bounded number of workers.
A file failing to generate never aborts the batch: every file gets its own
outcome. Cancellation is checked between files.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package batch

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'koopa.batch'.
func tracer() tracing.Trace {
	return tracing.Select("koopa.batch")
}
