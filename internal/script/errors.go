package script

import "errors"

var (
	// ErrUnsupported indicates the script does not define the called function.
	ErrUnsupported = errors.New("function not defined by script")
	// ErrInvalidDefinition indicates the plugin.register table is malformed.
	ErrInvalidDefinition = errors.New("invalid plugin definition")
	// ErrClosed indicates the provider's Lua state has been released.
	ErrClosed = errors.New("script provider closed")
)
