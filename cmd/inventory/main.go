package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiReset     = "\033[0m"
	ansiBold      = "\033[1m"
	ansiDim       = "\033[2m"
	ansiCyan      = "\033[36m"
	ansiBrightMag = "\033[95m"
)

func main() {
	err := rootCmd.Execute()
	// 失败的命令同样需要导出指标并刷新日志
	if current != nil {
		if closeErr := current.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "错误:", err)
		os.Exit(exitCode(err))
	}
}

// isTerminal 标准输出是否为终端
func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func printStartupBanner() {
	if jsonOutput || !isTerminal() {
		return
	}
	fmt.Println(ansiBrightMag + "╔══════════════════════════════════════════════════════╗" + ansiReset)
	fmt.Println(ansiBrightMag + "║        PPEC Parts Inventory · batch & component       ║" + ansiReset)
	fmt.Println(ansiBrightMag + "╚══════════════════════════════════════════════════════╝" + ansiReset)
	fmt.Println(ansiCyan + ansiBold + "Paisley · Dubai" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------" + ansiReset)
}
