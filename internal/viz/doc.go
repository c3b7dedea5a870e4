// Package viz draws renders and ray traces in the terminal.
//
//   - [Model]: Bubble Tea view of a render in progress, with a colour
//     preview when it finishes
//   - [Canvas]: Braille canvas used to plot a ray's path around the throat
//   - [HalfBlock]: two image rows per text line using upper half blocks
//
// # Key Bindings
//
//	Q/Esc - Cancel or quit
//	T     - Cycle colour themes
//	P     - Toggle the preview
//	?     - Show help overlay
package viz
