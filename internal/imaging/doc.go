// Package imaging holds the raster side of the generation pipeline: decoding
// and encoding provider output, the individual filter stages, the table of
// post-processing sequences selected per quality tier, and the region
// blending helper used by the optional watermark-corner patch.
//
// Every stage takes an image.Image and returns a new image; inputs are never
// mutated, so a failed stage can always fall back to the image produced by
// the stage before it.
package imaging
