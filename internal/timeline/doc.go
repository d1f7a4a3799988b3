// Package timeline reconstructs a single fixed-length audio track from
// independently synthesized per-segment clips.
//
// Rendering runs four sequential stages: Probe (detect the working sample
// rate from the sources), Place (decode, time-stretch, and write each clip at
// its original slot, resolving overlaps greedily in timestamp order), Blend
// (remix a background bed under the voice track at the original loudness
// balance), and Normalize (final peak headroom pass). A clip that cannot be
// decoded or placed is a soft failure: the run continues and the problem is
// reported as a warning on the result. Only failures to read the background
// bed or write the output file abort a run.
package timeline
