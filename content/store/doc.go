// Package store provides the pluggable key-value engine layer the content
// database sits on. It defines the Engine interface, the Record envelope and
// its codecs, and engine implementations backed by bolt, badger, pebble, or
// process memory.
//
// Engines are blocking; the content package supplies the asynchrony. Each
// BulkUpdate and DeleteWhere call is atomic within one engine transaction, but
// there is no transaction spanning multiple calls.
package store
