package main

import (
	"os"

	"github.com/xuxiong/issue-insight/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
