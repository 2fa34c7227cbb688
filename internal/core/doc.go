// Package core implements the import pipeline: resolving the operator's
// field mapping, coercing raw cell values into each CRM field's declared
// type, resolving enumeration options, ingesting remotely-referenced files
// into inline payloads, and submitting one create call per row while
// collecting per-row outcomes.
//
// The package has no HTTP or CLI dependencies and can be driven by any
// frontend. A run never aborts after it starts: every row-level problem is
// converted into a failure Outcome and the pipeline moves on to the next
// row. Only pre-run validation (mapping resolution) can reject a run.
package core
