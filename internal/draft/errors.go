package draft

import "errors"

var (
	ErrUnknownProvider = errors.New("unknown draft provider")
	ErrEmptyPrompt     = errors.New("prompt must not be blank")
)
