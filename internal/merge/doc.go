// Package merge reconciles a shared ancestor, a local copy and a server copy
// of a document into one result.
//
// Policy, applied uniformly:
//   - changes that do not overlap are combined silently;
//   - a field both sides changed to different values takes the server's
//     value and is reported as a [models.ConflictDetail];
//   - a node moved by both sides takes the server's position, unreported;
//   - a concurrent edit beats a concurrent delete.
//
// Merging never fails: ambiguity always degrades to the server's version.
package merge
