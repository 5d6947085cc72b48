package main

import "github.com/jaydudhale/Attendance-system-Backend/cmd"

func main() {
	cmd.Execute()
}
