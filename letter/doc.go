// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package letter renders the "surat permohonan" request letter an OPD sends
with a building proposal.

Build takes four strings and returns a single-page A4 PDF. The activity
type selects which of the two boxes (Pembangunan or Pemeliharaan) is
crossed; Checkboxes exposes that choice so callers and tests can inspect
it without parsing PDF output.
*/
package letter
