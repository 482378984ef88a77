// Package workflow manages the prompt templates sent to the completion
// service.
//
// # Embedded Defaults
//
// Default prompts are embedded at compile time from the defaults/ directory:
//   - defaults/brainstorm.md - CV analysis and topic brainstorm
//   - defaults/research.md   - candidate source search
//   - defaults/compose.md    - one document section
//
// Each file is a text/template defining two templates, "system" and "user".
// The system part is identical for every call of one kind, so providers
// that cache system prompts reuse it across sections.
//
// # Runtime Customization
//
// Users can customize prompts by creating files in .endeavor/prompts/:
//   - .endeavor/prompts/brainstorm.md
//   - .endeavor/prompts/research.md
//   - .endeavor/prompts/compose.md
//
// Run 'endeavor init -r' to reset prompts to the embedded defaults.
package workflow
