package main

import "os"

func main() {
	if err := NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
