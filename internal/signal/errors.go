package signal

import "errors"

// ErrNoSymbols is returned when a run resolves to an empty symbol list.
var ErrNoSymbols = errors.New("no symbols to analyze")
