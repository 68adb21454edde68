package main

import "github.com/fmpberger88/EnigmaTalk/config"

func main() {
	config.RunServer()
}
