package poster

// ExitCode is the process status reported for one invocation
type ExitCode int

const (
	ExitOK             ExitCode = 0
	ExitUsage          ExitCode = 1
	ExitNoCredentials  ExitCode = 2
	ExitSendFailed     ExitCode = 3
	ExitInvalidMessage ExitCode = 4
	ExitRateLimited    ExitCode = 5
	ExitInvalidWebhook ExitCode = 6
)

// Outcome names the result of an invocation for the local stats store
type Outcome string

const (
	OutcomeSent           Outcome = "sent"
	OutcomeUsage          Outcome = "usage"
	OutcomeNoCredentials  Outcome = "no_credentials"
	OutcomeSendFailed     Outcome = "send_failed"
	OutcomeInvalidMessage Outcome = "invalid_message"
	OutcomeRateLimited    Outcome = "rate_limited"
	OutcomeInvalidWebhook Outcome = "invalid_webhook"
)

// AllOutcomes lists every outcome in exit-code order
var AllOutcomes = []Outcome{
	OutcomeSent,
	OutcomeUsage,
	OutcomeNoCredentials,
	OutcomeSendFailed,
	OutcomeInvalidMessage,
	OutcomeRateLimited,
	OutcomeInvalidWebhook,
}

// Outcome maps the exit code to its stats name
func (c ExitCode) Outcome() Outcome {
	switch c {
	case ExitOK:
		return OutcomeSent
	case ExitNoCredentials:
		return OutcomeNoCredentials
	case ExitSendFailed:
		return OutcomeSendFailed
	case ExitInvalidMessage:
		return OutcomeInvalidMessage
	case ExitRateLimited:
		return OutcomeRateLimited
	case ExitInvalidWebhook:
		return OutcomeInvalidWebhook
	default:
		return OutcomeUsage
	}
}
