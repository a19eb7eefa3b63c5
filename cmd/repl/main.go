// Command repl is an interactive RV32I + Zicsr emulator: a single-hart
// CPU driven one line of assembly at a time, with undo/redo through
// previously executed instructions.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/go-rv32i/repl/pkg/asm"
	"github.com/go-rv32i/repl/pkg/interp"
	"github.com/go-rv32i/repl/pkg/rv32i"
)

func main() {
	var memorySize uint32
	var historyBound int
	var exec string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive RV32I + Zicsr instruction-set emulator",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(newTextHandler(os.Stderr, levelFor(verbose)))
			slog.SetDefault(logger)

			in, err := interp.New(interp.Config{MemorySize: memorySize, HistoryBound: historyBound})
			if err != nil {
				return err
			}

			if exec != "" {
				return runBatch(in, exec)
			}
			runREPL(in)
			return nil
		},
	}

	rootCmd.Flags().Uint32Var(&memorySize, "memory-size", rv32i.DefaultMemorySize, "simulated memory size in bytes")
	rootCmd.Flags().IntVar(&historyBound, "history-bound", 1000, "maximum number of undo/redo entries (0 disables history)")
	rootCmd.Flags().StringVar(&exec, "exec", "", "run a \";\"-separated batch of lines non-interactively and exit")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log each executed instruction at debug level")

	if err := rootCmd.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(1)
	}
}

func levelFor(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func runBatch(in *interp.Interpreter, line string) error {
	deltas, err := in.InterpretBatch(line)
	logDeltas(deltas)
	if len(deltas) > 0 {
		fmt.Println(formatBatchResult(deltas))
	}
	if err != nil {
		return errors.New(describeBatchError(err))
	}
	return nil
}

func runREPL(in *interp.Interpreter) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Println("rv32i repl — type /help for commands, an assembly line to execute it")
	for {
		input, err := line.Prompt("rv32i> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return
			}
			slog.Error("error reading line", "err", err.Error())
			return
		}
		line.AppendHistory(input)

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "/") {
			if quit := dispatchCommand(in, trimmed); quit {
				return
			}
			continue
		}

		deltas, err := in.InterpretBatch(trimmed)
		logDeltas(deltas)
		if len(deltas) > 0 {
			fmt.Println(formatBatchResult(deltas))
		}
		if err != nil {
			var pe *asm.ParseError
			var ce *rv32i.CpuError
			switch {
			case errors.As(err, &pe):
				fmt.Println("parse error:", err.Error())
			case errors.As(err, &ce):
				fmt.Println("trap:", err.Error())
			default:
				fmt.Println("error:", describeBatchError(err))
			}
		}
	}
}

// dispatchCommand runs one "/..." REPL command; it returns true when the
// REPL should exit.
func dispatchCommand(in *interp.Interpreter, command string) bool {
	fields := strings.Fields(command)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit":
		return true

	case "/help":
		printHelp()

	case "/reg", "/registers":
		fmt.Print(formatRegisters(in.CPU()))

	case "/csr":
		if len(fields) != 2 {
			fmt.Println("usage: /csr <NAME-or-0xADDR>")
			return false
		}
		printCSR(in, fields[1])

	case "/mem":
		if len(fields) != 3 {
			fmt.Println("usage: /mem <addr> <length>")
			return false
		}
		printMemory(in, fields[1], fields[2])

	case "/prev":
		delta, err := in.PreviousState()
		if err != nil {
			fmt.Println("error:", err.Error())
			return false
		}
		fmt.Println(formatDelta(delta))

	case "/next":
		delta, err := in.NextState()
		if err != nil {
			fmt.Println("error:", err.Error())
			return false
		}
		fmt.Println(formatDelta(delta))

	case "/reset":
		in.Reset()
		fmt.Println("state reset")

	default:
		fmt.Printf("unknown command %q; try /help\n", fields[0])
	}
	return false
}

func printHelp() {
	fmt.Println(strings.TrimLeft(`
/reg                dump all registers and PC
/csr <name|addr>    dump one CSR's value
/mem <addr> <len>   hex-dump <len> bytes of memory starting at <addr>
/prev               undo the most recently executed instruction
/next               redo the next undone instruction
/reset              clear registers, memory, CSRs, and history
/quit, /exit        leave the REPL
Anything else is parsed as one or more ";"-separated assembly lines.
`, "\n"))
}

func printCSR(in *interp.Interpreter, token string) {
	addr, ok := rv32i.CSRAddrByName(strings.ToUpper(token))
	if !ok {
		n, err := strconv.ParseUint(strings.TrimPrefix(strings.ToUpper(token), "0X"), 16, 16)
		if err != nil {
			fmt.Printf("unknown CSR %q\n", token)
			return
		}
		addr = uint16(n)
	}
	if !in.CPU().CSR().Present(addr) {
		fmt.Printf("CSR 0x%03X is not implemented\n", addr)
		return
	}
	fmt.Printf("0x%03X = 0x%08X\n", addr, in.CPU().CSR().Get(addr))
}

func printMemory(in *interp.Interpreter, addrTok, lenTok string) {
	addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToUpper(addrTok), "0X"), 16, 32)
	if err != nil {
		fmt.Println("bad address:", err.Error())
		return
	}
	length, err := strconv.ParseUint(lenTok, 10, 32)
	if err != nil {
		fmt.Println("bad length:", err.Error())
		return
	}
	out, err := formatMemory(in.CPU(), uint32(addr), uint32(length))
	if err != nil {
		fmt.Println("error:", err.Error())
		return
	}
	fmt.Print(out)
}
