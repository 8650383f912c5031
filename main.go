// File: main.go
package main

import "github.com/xkilldash9x/scalpel-dom/cmd"

func main() {
	cmd.Execute()
}
