// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - EmbeddingService: Turns text into fixed-length vectors
//   - VectorStore: Stores chunk vectors and answers nearest-neighbour queries
//   - DocumentSource: Lists and reads files from a documents directory
//   - NormaliserRegistry: Extracts plain text from raw file bytes
//   - PostProcessorPipeline: Splits documents into chunks and stamps metadata
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Answer generation. Without it, only retrieval is available.
//   - DocumentWatcher: Change notifications for watch mode.
//   - PromptStore: Customised answer prompts. Without it, built-in prompts are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
