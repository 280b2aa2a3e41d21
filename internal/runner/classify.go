package runner

import "strings"

// FailureKind classifies a failed spin by its upstream message.
type FailureKind int

const (
	// FailureGeneric is logged and the loop continues normally.
	FailureGeneric FailureKind = iota
	// FailureTransport extends the next wait.
	FailureTransport
	// FailureBalance ends the run.
	FailureBalance
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransport:
		return "transport"
	case FailureBalance:
		return "balance"
	default:
		return "generic"
	}
}

// Classify matches the free-text failure message. The upstream exposes no
// error codes, so this is the only place that knows the message wording.
// Balance wins over transport: a run that cannot pay should stop right away.
func Classify(msg string) FailureKind {
	if strings.Contains(strings.ToLower(msg), "balance") {
		return FailureBalance
	}
	if strings.Contains(msg, "Request failed") {
		return FailureTransport
	}
	return FailureGeneric
}
