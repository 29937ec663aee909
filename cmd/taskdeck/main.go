// TaskDeck APIサーバーのエントリーポイント。
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/taskdeck/internal/app"
)

func main() {
	if err := app.Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "taskdeck:", err)
		os.Exit(1)
	}
}
