/*
Package arenaJSON is an in-place JSON parser with a pooled document model.

The parser consumes a contiguous byte buffer in UTF-8, UTF-16 or UTF-32
(either byte order), detects the encoding when asked to, and materializes a
tree of values whose string and number text points either into the caller's
buffer — the destructive, zero-copy default — or into a bump-allocated pool
owned by the document. Documents are parameterized by the code unit width
their strings are stored in; input of a different width is transcoded during
the parse.

Where a scalar's text lands follows the parse flags:

  - wider document units, ForceStringTerminators, or NoInlineTranslation
    with translation needed: measured, copied into the pool and
    zero-terminated;
  - no translation needed and NoStringTerminators set: the view points at
    the untouched input;
  - no translation needed, destructive flags: the view points at the input
    and a zero unit is written one past its end;
  - translation needed and in-place rewriting allowed: the input is
    rewritten destructively at the same or narrower width.

The tree supports mutation (insert, remove, replace by index or name) and
printing back to any of the supported encodings. Documents and the pool
behind them are torn down or Cleared as a unit; removal never frees.
*/
package arenaJSON
