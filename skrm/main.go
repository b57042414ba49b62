// Command skrm measures the cost of writing floats into a skyrmion racetrack
// memory.
package main

import "github.com/sarchlab/skrm/skrm/cmd"

func main() {
	cmd.Execute()
}
