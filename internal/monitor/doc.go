// Package monitor implements the live EMG view: the channel store, the
// threshold classifier, the ingestion loop that feeds them, and the two
// render loops (a Bubble Tea dashboard and a plain-text printer).
//
// # Architecture
//
// Data flows one way:
//
//	link.Source -> protocol.Matcher -> Store/Classifier -> Model or Printer
//
// The Ingestor runs on its own goroutine and is the only writer. The render
// side calls Store.Snapshot on every tick and never holds the lock while
// drawing. The Store is the only state shared between the two.
//
// # Key Components
//
//	Store       - Ring buffer per channel, pre-filled with zeros, plus status and link state
//	Classifier  - First-match-wins threshold rules over the latest samples
//	Ingestor    - Read, decode, append, classify; stops on cancel or a fatal link error
//	Pipeline    - Owns the above and their lifecycle (NewPipeline, Start, Stop, Wait)
//	Model       - Bubble Tea dashboard redrawn on a fixed tick
//	Printer     - Headless renderer for pipes and --plain
//
// # Message Flow
//
// The dashboard redraws on a fixed cadence independent of the data rate:
//
//  1. tickMsg fires at the render interval (default 50ms)
//  2. Update copies a Snapshot from the Store unless the view is frozen
//  3. View draws every channel as a braille series with the status line
//
// A link that fails to open, or drops mid-session, leaves the last snapshot
// on screen with a warning banner. Rendering never stops because of the link.
//
// # Keyboard Shortcuts
//
//	q, Ctrl+C   - Quit
//	Space       - Freeze / unfreeze the display (ingestion keeps running)
//	?           - Toggle help overlay
package monitor
