// Package transport carries commands to devices. The core depends only on
// the Connection interface; the SSH implementation here is one carrier, and
// tests substitute in-memory doubles.
package transport
