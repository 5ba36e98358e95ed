package contest

import "errors"

// ErrInvalidRules marks a rule set that must abort the run.
var ErrInvalidRules = errors.New("invalid contest rules")
