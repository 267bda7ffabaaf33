package rule

import "errors"

// ErrUnknownKind is returned by [Rule.Compile] for a rule kind outside the
// seven supported scope kinds.
var ErrUnknownKind = errors.New("unknown rule kind")
