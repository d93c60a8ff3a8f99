// Package splice applies position-exact text edits to an immutable source.
//
// A Buffer collects overwrites and insertions expressed in original byte
// offsets. Edits never see each other's output: every offset refers to the
// original text, so the order edits are issued in does not matter except for
// several insertions at the same position, which keep issue order.
//
// Render produces the edited text together with generated/original offset
// pairs that the srcmap package turns into a Source Map v3 document.
package splice
