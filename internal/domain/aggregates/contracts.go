package aggregates

// LockScope names the advisory lock a caller must hold around a write.
type LockScope string

const (
	// LockEstimate serialises writes that touch one baseline estimate or
	// anything reconciled against it.
	LockEstimate LockScope = "estimate"
)

// Contract documents what an aggregate writes in its single transaction.
type Contract struct {
	Name   string
	Writes []string
	Lock   LockScope
	Notes  string
}

type Aggregate interface {
	Contract() Contract
}

func Contracts() []Contract {
	return []Contract{
		BaselineAggregateContract,
		OfferAggregateContract,
		AlertAggregateContract,
	}
}
