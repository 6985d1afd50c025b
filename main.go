package main

import (
	"sentry-bot/bot"
	"sentry-bot/handlers"
)

func main() {
	bot.Run(handlers.Register)
}
