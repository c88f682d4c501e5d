// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the user's ~/.docqa directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable answer prompts
package file
