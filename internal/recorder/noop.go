package recorder

import "LootSpinner/internal/model"

// NoopRecorder is a no-op implementation used when logging is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) Start(_ *model.RunInfo) error        { return nil }
func (n *NoopRecorder) RecordRawSpin(_ []byte) error        { return nil }
func (n *NoopRecorder) RecordSpin(_ *SpinEvent) error       { return nil }
func (n *NoopRecorder) RecordAccount(_ *AccountEvent) error { return nil }
func (n *NoopRecorder) Finish() error                       { return nil }
func (n *NoopRecorder) RecordReport(_ *model.Report) error  { return nil }
func (n *NoopRecorder) Close() error                        { return nil }
