// Package constants vends constants used in various components of quire service, e.g., env var names
package constants

const (
	// -------------- env vars --------------
	// common
	EnvVerbose = "QUIRE_VERBOSE"
	// server
	EnvAppHost = "QUIRE_HOST"
	EnvAppPort = "QUIRE_PORT"
	// stores
	EnvDataDir     = "QUIRE_DATA_DIR"
	EnvCredsFile   = "QUIRE_CREDENTIALS_FILE"
	EnvTestProfile = "QUIRE_TEST_PROFILE"
	// sessions
	EnvSessionKey = "QUIRE_SESSION_KEY"
	// sign-in throttle
	EnvSignInAttemptMax    = "QUIRE_SIGNIN_ATTEMPT_MAX"
	EnvSignInAttemptWindow = "QUIRE_SIGNIN_ATTEMPT_WINDOW"

	// -------------- log fields --------------
	LogFieldFuncName  = "funcName"
	LogFieldRequestID = "requestID"
)
