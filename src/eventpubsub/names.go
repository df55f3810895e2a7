package eventpubsub

const (
	OptionChainSnapshotEvent = "OptionChainSnapshotEvent"
	OptionAnalysisUpdated    = "OptionAnalysisUpdated"
)
