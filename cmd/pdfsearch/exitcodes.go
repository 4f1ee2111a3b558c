package main

// Exit codes returned by the CLI.
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (no store, invalid config)
	ExitOllamaError   = 3 // Ollama not available
	ExitParseError    = 4 // Document could not be decoded as a PDF
	ExitModelNotFound = 5 // Embedding model not found
	ExitDuplicate     = 6 // Document already indexed; needs --replace
)
