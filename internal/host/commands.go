package host

import "github.com/google/uuid"

// Command names accepted by POST /api/commands.
const (
	CmdSetPreference        = "set-preference"
	CmdSetSystemPreference  = "set-system-preference"
	CmdSetWorkspace         = "set-workspace"
	CmdCreateWorkspace      = "create-workspace"
	CmdRemoveWorkspace      = "remove-workspace"
	CmdRequestRestartNotice = "request-restart-notice"
	CmdRequestReloadDialog  = "request-reload-dialog"
	CmdSetAppLockPassword   = "set-app-lock-password"
	CmdClearAppLock         = "clear-app-lock"
)

// Command is a named request with positional arguments.
type Command struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Args []any  `json:"args"`
}

// NewCommand builds a command with a fresh request id.
func NewCommand(name string, args ...any) Command {
	if args == nil {
		args = []any{}
	}
	return Command{ID: uuid.NewString(), Name: name, Args: args}
}

// SetPreference asks the host to set a global preference.
func SetPreference(name string, value any) Command {
	return NewCommand(CmdSetPreference, name, value)
}

// SetSystemPreference asks the host to set an OS-level preference.
func SetSystemPreference(name string, value any) Command {
	return NewCommand(CmdSetSystemPreference, name, value)
}

// SetWorkspace merges partial into workspace id. A nil partial removes it.
func SetWorkspace(id string, partial map[string]any) Command {
	if partial == nil {
		return NewCommand(CmdSetWorkspace, id, nil)
	}
	return NewCommand(CmdSetWorkspace, id, partial)
}

// CreateWorkspace asks the host to create a workspace from descriptor.
func CreateWorkspace(descriptor map[string]any) Command {
	return NewCommand(CmdCreateWorkspace, descriptor)
}

// RemoveWorkspace asks the host to delete workspace id.
func RemoveWorkspace(id string) Command {
	return NewCommand(CmdRemoveWorkspace, id)
}

// RequestRestartNotice asks the host to tell the user a restart is required.
func RequestRestartNotice() Command {
	return NewCommand(CmdRequestRestartNotice)
}

// RequestReloadDialog asks the host to offer reloading workspace id.
func RequestReloadDialog(id string) Command {
	return NewCommand(CmdRequestReloadDialog, id)
}

// SetAppLockPassword asks the host to enable the app lock with password.
func SetAppLockPassword(password string) Command {
	return NewCommand(CmdSetAppLockPassword, password)
}

// ClearAppLock asks the host to disable the app lock.
func ClearAppLock() Command {
	return NewCommand(CmdClearAppLock)
}
