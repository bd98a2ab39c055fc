package main

import (
	"github.com/mevzuatgpt/mevzuatctl/cmd"
)

func main() {
	cmd.Execute()
}
