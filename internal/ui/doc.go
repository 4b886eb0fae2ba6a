// Package ui renders the oxdash terminal dashboard with Bubble Tea.
//
// The model never talks to the network. It reads poller snapshots on a
// short tick and asks the poller for a refresh when the user presses r.
// The refresh binding is disabled while a check is in flight.
package ui
