package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/gba-emulator/cpu"
)

// continueStepBudget bounds a single "continue" so the UI stays responsive
// even with no breakpoint in reach
const continueStepBudget = 2000000

// TUI represents the text user interface for the debugger
type TUI struct {
	// Core components
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	// Layout containers
	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	// View panels
	DisassemblyView *tview.TextView
	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	StackView       *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	// State
	MemoryAddress uint32
}

// NewTUI creates a new text user interface
func NewTUI(debugger *Debugger) *TUI {
	tui := &TUI{
		Debugger:      debugger,
		App:           tview.NewApplication(),
		MemoryAddress: 0x02000000,
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()
	tui.RefreshAll()

	return tui
}

// Run starts the TUI event loop
func (t *TUI) Run() error {
	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// initializeViews creates all the view panels
func (t *TUI) initializeViews() {
	// Disassembly View
	t.DisassemblyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	// Register View
	t.RegisterView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	// Memory View
	t.MemoryView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	// Stack View
	t.StackView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	// Breakpoints View
	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	// Output View
	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	// Command Input
	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

// buildLayout constructs the TUI layout
func (t *TUI) buildLayout() {
	// Left panel: disassembly over memory
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(t.MemoryView, 0, 3, false)

	// Right panel: registers, stack, breakpoints
	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 13, 0, false).
		AddItem(t.StackView, 0, 1, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	// Main content: left and right panels
	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	// Main layout: content + output + command
	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

// setupKeyBindings sets up keyboard shortcuts
func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

// handleCommand processes command input
func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		cmd = t.Debugger.LastCommand
	}
	if cmd != "" {
		t.executeCommand(cmd)
		t.CommandInput.SetText("")
	}
}

// executeCommand dispatches a debugger command
func (t *TUI) executeCommand(command string) {
	t.Debugger.LastCommand = command
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "help", "h":
		t.writeOutput(helpText)

	case "step", "s":
		t.Debugger.Step()

	case "continue", "c", "run":
		if t.Debugger.Continue(continueStepBudget) {
			t.writeOutput(fmt.Sprintf("breakpoint hit at 0x%08X\n", t.Debugger.CurrentPC()))
		} else {
			t.writeOutput("stopped after step budget\n")
		}

	case "break", "b":
		address := t.Debugger.CurrentPC()
		if len(fields) > 1 {
			parsed, err := t.Debugger.ResolveAddress(fields[1])
			if err != nil {
				t.writeOutput(err.Error() + "\n")
				return
			}
			address = parsed
		}
		t.Debugger.Breakpoints.Set(address)
		t.writeOutput(fmt.Sprintf("breakpoint set at 0x%08X\n", address))

	case "delete", "d":
		if len(fields) > 1 {
			if address, err := t.Debugger.ResolveAddress(fields[1]); err == nil {
				t.Debugger.Breakpoints.Delete(address)
				t.writeOutput(fmt.Sprintf("breakpoint removed at 0x%08X\n", address))
			}
		} else {
			t.Debugger.Breakpoints.Clear()
			t.writeOutput("all breakpoints cleared\n")
		}

	case "mem", "m":
		if len(fields) > 1 {
			if address, err := t.Debugger.ResolveAddress(fields[1]); err == nil {
				t.MemoryAddress = address
			} else {
				t.writeOutput(err.Error() + "\n")
				return
			}
		}

	case "reset":
		t.Debugger.Machine.CPU().Reset()
		t.writeOutput("machine reset\n")

	case "quit", "q", "exit":
		t.App.Stop()
		return

	default:
		t.writeOutput(fmt.Sprintf("unknown command: %s (try help)\n", fields[0]))
	}

	t.RefreshAll()
}

// writeOutput appends a line to the output panel
func (t *TUI) writeOutput(text string) {
	t.Debugger.Output.WriteString(text)
	t.OutputView.SetText(t.Debugger.Output.String())
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from the machine state
func (t *TUI) RefreshAll() {
	t.RegisterView.SetText(t.Debugger.FormatRegisters())
	t.DisassemblyView.SetText(t.Debugger.FormatDisassembly())
	t.MemoryView.SetText(t.Debugger.FormatMemory(t.MemoryAddress, 16))
	t.StackView.SetText(t.Debugger.FormatMemory(t.Debugger.Machine.CPU().Register(cpu.SP), 8))
	t.BreakpointsView.SetText(t.Debugger.Breakpoints.List())
}

const helpText = `commands:
  step (s)          execute one instruction
  continue (c)      run until a breakpoint
  break [addr] (b)  set a breakpoint
  delete [addr] (d) remove a breakpoint, or all of them
  mem <addr> (m)    move the memory view
  reset             raise the reset exception
  quit (q)          leave the debugger
keys: F5 continue, F9 break here, F11 step, Ctrl-C quit
`
