package eventmodels

import "context"

type OptionChainSnapshotEvent struct {
	Ctx      context.Context
	Snapshot *OptionChainSnapshot
}
