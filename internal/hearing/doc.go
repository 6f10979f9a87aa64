// Package hearing models the identity of one recorded hearing.
//
// A Key is built from the raw submission fields (year, committee, bill,
// video title) with each component independently sanitized, and maps
// deterministically onto the object-storage folder that holds the hearing's
// metadata.json and transcript.json artifacts. Identical raw inputs always
// produce the same key; the transcript cache depends on that.
package hearing
