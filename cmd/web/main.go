package main

import "video_ingest/internal/app"

func main() {
	app.Run()
}
