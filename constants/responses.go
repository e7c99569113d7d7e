package constants

// Function Response Messages
const (
	MsgFunctionError    = "Function execution error"
	MsgFunctionWorking  = "Netlify Function is working!"
	MsgUnknownField     = "unknown"
	MsgFunctionNotFound = "function not found"
)

// Staging Notices
const (
	NoticeCopied      = "✓ Copied %s"
	NoticeCopyFailed  = "✗ Error copying %s: %v"
	NoticeNotFound    = "⚠ Not found: %s (skipping)"
	NoticeSummary     = "\nCopied %d/%d model files"
	NoticeNoneCopied  = "⚠ WARNING: No model files were copied. Models should be added to the repository or uploaded separately."
	NoticeSomeMissing = "⚠ WARNING: Only %d/%d model files were copied. Some models may be missing."
)

// Error Messages for Logging
const (
	LogFunctionError     = "Function error"
	LogBackendInitFailed = "Backend initialization failed"
	LogWriteFailed       = "w.Write failed: %v"
)
