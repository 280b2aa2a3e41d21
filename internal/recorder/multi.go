package recorder

import (
	"errors"

	"LootSpinner/internal/model"
)

// Multi fans every call out to each recorder in order and joins the errors.
type Multi []Recorder

func (m Multi) each(fn func(r Recorder) error) error {
	var errs []error
	for _, r := range m {
		if err := fn(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Start(info *model.RunInfo) error {
	return m.each(func(r Recorder) error { return r.Start(info) })
}

func (m Multi) RecordRawSpin(raw []byte) error {
	return m.each(func(r Recorder) error { return r.RecordRawSpin(raw) })
}

func (m Multi) RecordSpin(evt *SpinEvent) error {
	return m.each(func(r Recorder) error { return r.RecordSpin(evt) })
}

func (m Multi) RecordAccount(evt *AccountEvent) error {
	return m.each(func(r Recorder) error { return r.RecordAccount(evt) })
}

func (m Multi) Finish() error {
	return m.each(func(r Recorder) error { return r.Finish() })
}

func (m Multi) RecordReport(rep *model.Report) error {
	return m.each(func(r Recorder) error { return r.RecordReport(rep) })
}

func (m Multi) Close() error {
	return m.each(func(r Recorder) error { return r.Close() })
}
