package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordEvaluation(_ *EvaluationRecord) error { return nil }
func (n *NoopRecorder) RecordTrade(_ *TradeRecord) error           { return nil }
func (n *NoopRecorder) RecordReset(_ *ResetRecord) error           { return nil }
func (n *NoopRecorder) Close() error                               { return nil }
