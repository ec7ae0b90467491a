// Package cli provides the interactive qrscan terminal harness.
//
// The harness stands in for the mobile shell: decoded frames are typed at the
// prompt instead of arriving from a camera, external targets are printed
// instead of opened, and system prompts are answered with y/n.
//
// An App is the application context. main builds exactly one with NewApp,
// runs the REPL with App.Run and tears it down once with App.Close.
//
// Commands
//
//	scan <payload>   feed a decoded payload to the capture session
//	history          list recorded scans
//	codes            list created codes
//	create <text>    render and register a new code
//	delete <code>    remove a scan from the local history
//	refresh          reload both histories from the server
//	zoom <factor>    set the zoom factor (clamped to the device range)
//	torch            toggle the torch
//	stop | start     deactivate or activate the capture session
//	state            show the capture session state
//	help             list commands
//	exit | quit      leave the program
package cli
