package main

import (
	"github.com/joho/godotenv"

	"ozziework/internal/app/server"
)

func main() {
	_ = godotenv.Load()
	server.Run()
}
