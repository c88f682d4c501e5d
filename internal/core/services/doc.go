// Package services implements the driving port interfaces: hybrid
// retrieval, batch ingestion, answer generation and settings.
//
// Services orchestrate calls to driven ports (adapters) and hold no
// references to concrete adapters, so every capability can be swapped
// for a test double.
package services
