// Package resolve orders provider adapters by priority and walks them
// sequentially until one yields authentic stream sources. It never
// substitutes placeholder content: an exhausted provider chain is reported
// as a failure with the full attempt trail, not papered over.
package resolve
