// Package statsui renders live per-batch progress for a benchmark run:
// one row per selection variant, redrawn in place, plus a trailing
// resource line once the run ends. Grounded on
// _examples/maikadee-AggTradesTool/internal/ui/ui.go's UI type — a
// buffered-channel update queue drained by a ticker-driven render loop
// built on pterm.DefaultArea, with the TUI-disabled path falling
// through to plain pterm log printers.
package statsui

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/shirou/gopsutil/v3/process"
)

// VariantUpdate is one variant's state as of its most recently completed
// batch.
type VariantUpdate struct {
	Variant      string
	BatchID      int
	SampleSize   int64
	Threshold    float64
	Rounds       int
	BatchElapsed time.Duration
}

// UI holds the terminal display for a run. Safe for concurrent use from
// multiple simulated PEs' goroutines via UI.Update.
type UI struct {
	enabled bool
	runID   string

	mu        sync.Mutex
	rows      map[string]VariantUpdate
	startTime time.Time

	UpdateChan chan VariantUpdate
	stopChan   chan struct{}
	wg         sync.WaitGroup

	area *pterm.AreaPrinter
}

// New creates a UI for runID. When enabled is false, Update calls still
// record state but nothing is drawn; LogInfo/LogError/LogSuccess fall
// through to plain pterm printers instead.
func New(enabled bool, runID string) *UI {
	return &UI{
		enabled:    enabled,
		runID:      runID,
		rows:       make(map[string]VariantUpdate),
		startTime:  time.Now(),
		UpdateChan: make(chan VariantUpdate, 256),
		stopChan:   make(chan struct{}),
	}
}

// Start begins the render loop. No-op when the UI is disabled.
func (u *UI) Start() {
	if !u.enabled {
		return
	}
	var err error
	u.area, err = pterm.DefaultArea.WithCenter(false).Start()
	if err != nil {
		u.enabled = false
		return
	}
	u.wg.Add(1)
	go u.loop()
}

// Stop shuts the render loop down. Safe to call multiple times.
func (u *UI) Stop() {
	u.mu.Lock()
	select {
	case <-u.stopChan:
		u.mu.Unlock()
		return
	default:
		close(u.stopChan)
	}
	u.mu.Unlock()

	u.wg.Wait()
	if u.area != nil {
		u.area.Stop()
		u.area = nil
	}
}

// Update records a variant's latest batch result. Safe to call from any
// goroutine, including once the UI is disabled (the row is still kept
// for PrintFinalStats).
func (u *UI) Update(v VariantUpdate) {
	u.mu.Lock()
	u.rows[v.Variant] = v
	u.mu.Unlock()

	if u.enabled {
		select {
		case u.UpdateChan <- v:
		default:
		}
	}
}

func (u *UI) loop() {
	defer u.wg.Done()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-u.stopChan:
			return
		case v := <-u.UpdateChan:
			u.mu.Lock()
			u.rows[v.Variant] = v
			u.mu.Unlock()
		case <-ticker.C:
			u.render()
		}
	}
}

func (u *UI) render() {
	if !u.enabled || u.area == nil {
		return
	}
	u.area.Update(u.buildDisplay())
}

func (u *UI) buildDisplay() string {
	u.mu.Lock()
	defer u.mu.Unlock()

	var s string
	header := pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Sprintf("resvoir run %s", u.runID)
	s += header + "\n\n"

	s += pterm.DefaultSection.Sprint("Variants")
	names := make([]string, 0, len(u.rows))
	for name := range u.rows {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row := u.rows[name]
		s += fmt.Sprintf("  %-14s batch=%-5d size=%-8d threshold=%-12.6g rounds=%-4d elapsed=%s\n",
			row.Variant, row.BatchID, row.SampleSize, row.Threshold, row.Rounds, row.BatchElapsed.Round(time.Microsecond))
	}
	s += fmt.Sprintf("\n  wall time: %s\n", time.Since(u.startTime).Round(time.Millisecond))
	return s
}

// LogInfo prints an informational line through pterm when the live area
// is not in use.
func (u *UI) LogInfo(format string, args ...interface{}) {
	if u.enabled {
		return
	}
	pterm.Info.Printfln(format, args...)
}

// LogError prints an error line.
func (u *UI) LogError(format string, args ...interface{}) {
	pterm.Error.Printfln(format, args...)
}

// LogSuccess prints a success line.
func (u *UI) LogSuccess(format string, args ...interface{}) {
	pterm.Success.Printfln(format, args...)
}

// ResourceLine reports this process's current memory (RSS, bytes) and
// CPU percent, informational only — never fed back into any stopping
// decision.
func ResourceLine() (rssBytes uint64, cpuPercent float64, err error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, 0, err
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpu, err := proc.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return mem.RSS, cpu, nil
}

// PrintFinalStats prints the final per-variant table after the run ends.
func (u *UI) PrintFinalStats(duration time.Duration) {
	u.mu.Lock()
	names := make([]string, 0, len(u.rows))
	for name := range u.rows {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([]VariantUpdate, 0, len(names))
	for _, name := range names {
		rows = append(rows, u.rows[name])
	}
	u.mu.Unlock()

	fmt.Println()
	pterm.DefaultHeader.WithBackgroundStyle(pterm.NewStyle(pterm.BgGreen)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("Run Complete")
	fmt.Println()
	for _, row := range rows {
		pterm.Info.Printfln("%-14s final size=%d threshold=%.6g rounds=%d",
			row.Variant, row.SampleSize, row.Threshold, row.Rounds)
	}
	pterm.Info.Printfln("total duration: %s", duration.Round(time.Second))

	if rss, cpu, err := ResourceLine(); err == nil {
		pterm.Info.Printfln("resources: rss=%.1f MB cpu=%.1f%%", float64(rss)/1024/1024, cpu)
	}
	fmt.Println()
}
