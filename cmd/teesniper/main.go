package main

import (
	_ "time/tzdata"

	"github.com/example/tee-time-sniper/cmd"
)

func main() {
	cmd.Execute()
}
