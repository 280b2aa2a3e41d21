package recorder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"LootSpinner/internal/model"
)

// Log file names inside the log directory.
const (
	RawSpinsFile = "raw_spin_results.json"
	AccountsFile = "account_updates.json"
	SummaryFile  = "spin_summary.txt"
	ErrorLogFile = "error_log.txt"
)

const (
	arrayHeader   = "[\n"
	arraySentinel = "{}]\n"
)

// jsonStream appends JSON values to a file either as a streaming array
// ("[", values followed by ",", then a "{}]" sentinel) or as NDJSON.
type jsonStream struct {
	f      *os.File
	ndjson bool
	closed bool
}

func openStream(path string, ndjson bool) (*jsonStream, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	s := &jsonStream{f: f, ndjson: ndjson}
	if !ndjson {
		if _, err := f.WriteString(arrayHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write %s header: %w", filepath.Base(path), err)
		}
	}
	return s, nil
}

func (s *jsonStream) append(raw []byte) error {
	if s == nil || s.closed {
		return nil
	}
	var buf bytes.Buffer
	if s.ndjson {
		if err := json.Compact(&buf, raw); err != nil {
			return fmt.Errorf("compact entry: %w", err)
		}
		buf.WriteByte('\n')
	} else {
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return fmt.Errorf("indent entry: %w", err)
		}
		buf.WriteString(",\n")
	}
	_, err := s.f.Write(buf.Bytes())
	return err
}

// finish writes the sentinel. Later appends are dropped.
func (s *jsonStream) finish() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	if s.ndjson {
		return nil
	}
	_, err := s.f.WriteString(arraySentinel)
	return err
}

func (s *jsonStream) close() error {
	if s == nil {
		return nil
	}
	return s.f.Close()
}

// FileRecorder writes the raw result, account, and summary logs of a run.
type FileRecorder struct {
	dir    string
	ndjson bool

	mu       sync.Mutex
	raw      *jsonStream
	accounts *jsonStream
	summary  *os.File
}

// NewFileRecorder creates a recorder that writes into dir. Files are created
// or truncated on Start.
func NewFileRecorder(dir string, ndjson bool) *FileRecorder {
	return &FileRecorder{dir: dir, ndjson: ndjson}
}

// Dir returns the log directory.
func (r *FileRecorder) Dir() string { return r.dir }

func (r *FileRecorder) Start(info *model.RunInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	var err error
	if r.raw, err = openStream(filepath.Join(r.dir, RawSpinsFile), r.ndjson); err != nil {
		return err
	}
	if r.accounts, err = openStream(filepath.Join(r.dir, AccountsFile), r.ndjson); err != nil {
		return err
	}
	r.summary, err = os.OpenFile(filepath.Join(r.dir, SummaryFile), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", SummaryFile, err)
	}
	header := fmt.Sprintf("Spin Bot Summary Log\nStarted at: %s\nWallet: %s\n\n",
		info.StartedAt.Format(model.DisplayTimeLayout), info.Wallet)
	if _, err := r.summary.WriteString(header); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	return nil
}

func (r *FileRecorder) RecordRawSpin(raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.raw.append(raw); err != nil {
		return fmt.Errorf("append %s: %w", RawSpinsFile, err)
	}
	return nil
}

func (r *FileRecorder) RecordAccount(evt *AccountEvent) error {
	if evt.Snapshot == nil || len(evt.Snapshot.Raw) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.accounts.append(evt.Snapshot.Raw); err != nil {
		return fmt.Errorf("append %s: %w", AccountsFile, err)
	}
	return nil
}

// RecordSpin appends a summary block. Spins without items are skipped.
func (r *FileRecorder) RecordSpin(evt *SpinEvent) error {
	if len(evt.Items) == 0 {
		return nil
	}
	rarities := make([]model.Rarity, len(evt.Items))
	values := make([]float64, len(evt.Items))
	for i, it := range evt.Items {
		rarities[i] = it.Rarity
		values[i] = it.Price
	}
	rj, err := json.Marshal(rarities)
	if err != nil {
		return err
	}
	vj, err := json.Marshal(values)
	if err != nil {
		return err
	}
	block := fmt.Sprintf("Spin #%d - %s\nItems: %d\nRarities: %s\nValues: %s\n\n",
		evt.Attempt, evt.At.Format(model.DisplayTimeLayout), len(evt.Items), rj, vj)
	return r.writeSummary(block)
}

func (r *FileRecorder) Finish() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.raw.finish(); err != nil {
		return fmt.Errorf("finish %s: %w", RawSpinsFile, err)
	}
	if err := r.accounts.finish(); err != nil {
		return fmt.Errorf("finish %s: %w", AccountsFile, err)
	}
	return nil
}

func (r *FileRecorder) RecordReport(rep *model.Report) error {
	return r.writeSummary(FormatFinalSummary(rep))
}

func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []string
	for _, s := range []*jsonStream{r.raw, r.accounts} {
		if err := s.close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if r.summary != nil {
		if err := r.summary.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close log files: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (r *FileRecorder) writeSummary(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.summary == nil {
		return fmt.Errorf("%s not opened", SummaryFile)
	}
	if _, err := r.summary.WriteString(text); err != nil {
		return fmt.Errorf("append %s: %w", SummaryFile, err)
	}
	return nil
}

// FormatFinalSummary renders the closing block of the summary log.
func FormatFinalSummary(rep *model.Report) string {
	s := &rep.Stats
	var b strings.Builder
	b.WriteString("\n===== Final Report =====\n")
	fmt.Fprintf(&b, "Completed at: %s\n", rep.FinishedAt.Format(model.DisplayTimeLayout))
	fmt.Fprintf(&b, "Total spin attempts: %d\n", s.SpinCount)
	fmt.Fprintf(&b, "Successful spins: %d\n", s.SuccessfulSpins)
	fmt.Fprintf(&b, "Total items received: %d\n", s.TotalItems)
	fmt.Fprintf(&b, "Rarity breakdown: %s\n", s.RarityBreakdown())
	fmt.Fprintf(&b, "Total spent: %s\n", model.FormatNumber(s.TotalSpent))
	fmt.Fprintf(&b, "Total earned: %s\n", model.FormatNumber(s.TotalEarned))
	fmt.Fprintf(&b, "Profit/Loss: %s\n", model.FormatNumber(s.Profit()))
	return b.String()
}

// AppendErrorLog appends a timestamped error and trace to path.
func AppendErrorLog(path string, at time.Time, err error, trace []byte) error {
	f, ferr := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if ferr != nil {
		return fmt.Errorf("open error log: %w", ferr)
	}
	defer f.Close()
	_, werr := fmt.Fprintf(f, "%s - Error: %v\n%s\n\n", at.Format(model.DisplayTimeLayout), err, bytes.TrimSpace(trace))
	return werr
}
