// Package factorise builds compact trees describing which metadata-key
// combinations occur in a collection.
//
// A tree groups combinations hierarchically: keys constant across a subtree
// fold into one node, dense sub-grids collapse into a single compact request,
// and everything else partitions on the varying key with the fewest distinct
// values. The availability package consumes trees through a narrow interface
// (select, missing, count, iterate, visit), so alternative factorization
// strategies can be dropped in.
//
// All values are canonical strings; callers canonicalize before building.
package factorise
