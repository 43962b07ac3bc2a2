// Package detection groups pixels into connected components and turns them
// into higher-level features: color blobs, horizontal and vertical lines, and
// stop-sign regions.
//
// # Labeling
//
// Both feature pipelines share LabelGrid, a two-pass connected-component
// labeler. Provisional labels are handed out while scanning and merges are
// recorded in an equivalence table that always points larger labels at
// smaller ones. Resolve then rewrites the grid to canonical labels in a single
// pass, drops components below a minimum size, and reports each component's
// pixels and bounding box.
//
// Two scans feed it:
//   - ClusterBlobs: depth-first traversal over 4-connected foreground pixels
//     of a binary mask
//   - LinkLines: a 2x2 window over classified edge pixels, with a LinkPolicy
//     deciding which neighbour pairs join a row run or a column run
//
// # Stop Signs
//
// StopSignDetector thresholds the scene to red, clusters it, filters the
// clusters by size and squareness, and scores each survivor against a
// Template silhouette rescaled to the cluster's box. The default template is a
// regular octagon.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Cluster boxes (X1, Y1)-(X2, Y2) are inclusive; Region is origin plus size
//
// # Concurrency
//
// Functions are stateless apart from Template, whose one-time load is guarded
// by sync.Once. Candidate clusters are scored concurrently.
package detection
