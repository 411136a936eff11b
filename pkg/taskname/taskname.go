package taskname

const (
	// Payout tasks
	PayoutSettle = "payout:settle"

	// Reconcile tasks
	ReconcileSweep = "reconcile:sweep"
)
