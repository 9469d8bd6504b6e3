package domain

type NotificationOp string

const (
	NotifyUpsert NotificationOp = "UPSERT"
	NotifyDelete NotificationOp = "DELETE"
)

type NotificationOutcome string

const (
	OutcomeDelivered       NotificationOutcome = "delivered"
	OutcomeFailed          NotificationOutcome = "failed"
	OutcomeSkipped         NotificationOutcome = "skipped"
	OutcomeInvalidResponse NotificationOutcome = "invalid_response"
)

// NotificationResult records what happened to one target of a fan-out.
type NotificationResult struct {
	FederationID string
	PlatformID   string
	URL          string
	Op           NotificationOp
	Outcome      NotificationOutcome
	StatusCode   int
	Err          error
}
