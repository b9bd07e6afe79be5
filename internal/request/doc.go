// Package request models wish-list items and parses wish-list files.
package request
