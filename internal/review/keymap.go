package review

// Command is one reviewer action produced by the keyboard dispatcher
type Command int

const (
	CmdNone Command = iota
	CmdApprove
	CmdReject
	CmdOpenEditor
	CmdNext
	CmdPrev
	CmdToggleCompare
	CmdZoomIn
	CmdZoomOut
	CmdResetZoom
	CmdClose
	CmdToggleHelp
)

// keymap is the session's global shortcut table. Keys are the string form
// of the pressed key as reported by the input layer.
var keymap = map[string]Command{
	"a":     CmdApprove,
	"x":     CmdReject,
	"e":     CmdOpenEditor,
	"j":     CmdNext,
	"right": CmdNext,
	"n":     CmdNext,
	"k":     CmdPrev,
	"left":  CmdPrev,
	"p":     CmdPrev,
	"c":     CmdToggleCompare,
	"+":     CmdZoomIn,
	"=":     CmdZoomIn,
	"-":     CmdZoomOut,
	"0":     CmdResetZoom,
	"q":     CmdClose,
	"esc":   CmdClose,
	"?":     CmdToggleHelp,
}

// HandleKey routes one key press through the session's guards and returns
// the command the caller should execute, or CmdNone.
//
// The dispatcher is owned by the session, registered and unregistered with
// its lifetime; it is never process-global. All shortcuts are inert while a
// text input has focus so typing a rejection note cannot trigger actions,
// and while an approve/reject call is in flight so duplicate presses
// cannot double-submit.
func (s *Session) HandleKey(key string) Command {
	if s.closed || s.TextInputFocused {
		return CmdNone
	}

	cmd, ok := keymap[key]
	if !ok {
		return CmdNone
	}

	switch s.state {
	case StateApproving, StateRejecting:
		return CmdNone
	case StateEditing:
		// The editor owns its own input; only closing escapes here
		if cmd == CmdClose {
			return cmd
		}
		return CmdNone
	}

	switch cmd {
	case CmdApprove, CmdReject:
		if s.HelpOpen {
			return CmdNone
		}
	case CmdOpenEditor:
		// Only for a pending-equivalent asset, never over another modal
		if !s.CanEdit() {
			return CmdNone
		}
	}

	return cmd
}
