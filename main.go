package main

import "github.com/snapcal/snapcal-cli/cmd/snapcal"

func main() {
	snapcal.Execute()
}
