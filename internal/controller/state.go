package controller

import "github.com/clinica/dashboard/internal/resource"

// Mode is what the record dialog is showing.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "view"
}

// LoadState tracks one fetch.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Loaded
	Errored
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "idle"
	}
}

// Dialog is the modal used to view, create and edit records. A closed dialog
// has no record.
type Dialog struct {
	Open   bool
	Mode   Mode
	Record resource.Record
}

// State is a point-in-time copy of everything a page renders.
type State struct {
	Authenticated bool
	Records       []resource.Record
	Dialog        Dialog
	// Error is the single error slot; empty means no error.
	Error     string
	ListState LoadState
}
