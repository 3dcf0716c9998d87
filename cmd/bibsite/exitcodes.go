package main

// Exit codes
const (
	ExitSuccess      = 0 // Success
	ExitError        = 1 // General error (missing bibliography, unknown key, runtime failure)
	ExitConfigError  = 2 // Configuration error (invalid .bibsite.yml, bad paths)
	ExitDataError    = 3 // Data error (unreadable or malformed publication document)
	ExitIndexMissing = 4 // Search index has not been built
	ExitCheckFailed  = 5 // check found problems
)
