// Package catalog scans source directories into a catalog of media entries.
//
// A scan classifies files by extension, optionally enriches them with
// metadata through a media.Extractor, and persists the result as a JSON
// cache keyed by a hash of the scan inputs. System artifacts, dotfiles, and
// temp/partial files are always excluded.
package catalog
