package main

import "github.com/fullhouse/poker-signup/cmd"

func main() {
    cmd.Execute()
}
