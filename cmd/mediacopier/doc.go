// Command mediacopier copies requested media from source folders to a
// destination: scan sources into a catalog, match a wish list against it,
// build a collision-safe copy plan, and execute it as a resumable job.
package main
