package api

const (
	// PingEndpoint is the endpoint for checking the API status
	PingEndpoint = "/ping"
	// CommitmentsEndpoint lists the registered commitments (GET), which is
	// the tree snapshot, and registers a new one (POST).
	CommitmentsEndpoint = "/commitments"
	// CommitmentsRootEndpoint returns the current root and size of the tree.
	CommitmentsRootEndpoint = "/commitments/root"
	// CommitmentProofEndpoint returns the inclusion proof of a commitment.
	CommitmentURLParam      = "commitment"
	CommitmentProofEndpoint = "/commitments/{" + CommitmentURLParam + "}/proof"
)
