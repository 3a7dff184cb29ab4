package ui

import (
	"fmt"
	"os"
)

func OK(msg string) {
	fmt.Println(Success.Render("✔ " + msg))
}

func Fail(msg string) {
	fmt.Fprintln(os.Stderr, Error.Render("✖ "+msg))
}
