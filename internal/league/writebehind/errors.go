package writebehind

import "errors"

// ErrUnflushed indica que Close terminou com mutações ainda pendentes
var ErrUnflushed = errors.New("write-behind: pending mutations not persisted")
