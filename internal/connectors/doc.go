// Package connectors holds the document sources ingestion reads from.
// The filesystem connector lists, reads and watches a local documents
// directory.
package connectors
